package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	queueUsecases "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/cli/bootstrap"
)

var (
	queues []string
	force  bool
)

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Queue mailbox tools",
	}

	poll := &cobra.Command{
		Use:   "poll",
		Short: "Fetch queue mailboxes once",
		Long:  `Fetch every email-enabled queue mailbox and turn the messages into tickets or follow-ups.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd.Context(), *flags)
		},
	}
	poll.Flags().StringSliceVarP(&queues, "queue", "q", nil, "Only poll the queues with these slugs")
	poll.Flags().BoolVar(&force, "force", false, "Poll even when the queue interval has not elapsed")

	test := &cobra.Command{
		Use:   "test <queue_id>",
		Short: "Check that a queue mailbox accepts the configured credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid queue id %q", args[0])
			}
			return runTest(cmd.Context(), *flags, uint(id))
		},
	}

	cmd.AddCommand(poll, test)
	return cmd
}

func runPoll(ctx context.Context, flags bootstrap.Flags) error {
	rt, err := bootstrap.Open(flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.Container.PollMailboxes().Execute(ctx, queueUsecases.PollMailboxesCommand{
		QueueSlugs: queues,
		Force:      force,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func runTest(ctx context.Context, flags bootstrap.Flags, queueID uint) error {
	rt, err := bootstrap.Open(flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.Container.TestMailbox().Execute(ctx, access.SystemActor(""), queueID); err != nil {
		return err
	}
	fmt.Println("Mailbox login succeeded")
	return nil
}
