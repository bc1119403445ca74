package kb

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Knowledge base tools",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load knowledge base categories and items from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			rt, err := bootstrap.Open(*flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Container.ImportKB().Execute(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Printf("Categories created: %d, updated: %d; items created: %d\n",
				res.CategoriesCreated, res.CategoriesUpdated, res.ItemsCreated)
			return nil
		},
	}

	cmd.AddCommand(importCmd)
	return cmd
}
