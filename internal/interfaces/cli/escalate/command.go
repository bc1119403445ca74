package escalate

import (
	"fmt"

	"github.com/spf13/cobra"

	ticketUsecases "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
)

var (
	queues []string
	dryRun bool
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalate",
		Short: "Raise the priority of tickets that waited too long",
		Long:  `Escalate open tickets in queues with escalate_days set, the same way the scheduled job does.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Open(*flags)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Container.Escalate().Execute(cmd.Context(), ticketUsecases.EscalateTicketsCommand{
				QueueSlugs: queues,
				DryRun:     dryRun,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Checked %d tickets, escalated %d, failed %d\n", res.Checked, len(res.Escalated), res.Failed)
			for _, id := range res.Escalated {
				fmt.Printf("  escalated ticket %d\n", id)
			}
			for _, w := range res.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&queues, "queue", "q", nil, "Only escalate the queues with these slugs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be escalated without saving")

	return cmd
}
