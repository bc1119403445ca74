package user

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	userUsecases "github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
)

var (
	username  string
	email     string
	password  string
	staff     bool
	superuser bool
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User administration",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long:  `Create a user account. The password may also be given through HELPDESK_USER_PASSWORD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("HELPDESK_USER_PASSWORD")
			}
			if password == "" {
				return errors.New("a password is required")
			}

			rt, err := bootstrap.Open(*flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			u, err := rt.Container.Accounts().Provision(cmd.Context(), userUsecases.CreateAccountCommand{
				Username:    username,
				Email:       email,
				Password:    password,
				IsStaff:     staff,
				IsSuperuser: superuser,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	create.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	create.Flags().StringVar(&email, "email", "", "E-mail address (required)")
	create.Flags().StringVarP(&password, "password", "p", "", "Password")
	create.Flags().BoolVar(&staff, "staff", false, "Grant staff access")
	create.Flags().BoolVar(&superuser, "superuser", false, "Grant superuser access (implies --staff)")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}
