package user

import "fmt"

const (
	DefaultTicketsPerPage = 25
	MaxTicketsPerPage     = 100
)

// Settings are per-user preferences. The zero value is not the default;
// use DefaultSettings.
type Settings struct {
	LoginViewTicketList bool `json:"login_view_ticketlist"`
	EmailOnTicketChange bool `json:"email_on_ticket_change"`
	EmailOnTicketAssign bool `json:"email_on_ticket_assign"`
	TicketsPerPage      int  `json:"tickets_per_page"`
	UseEmailAsSubmitter bool `json:"use_email_as_submitter"`
}

func DefaultSettings() Settings {
	return Settings{
		LoginViewTicketList: true,
		EmailOnTicketChange: true,
		EmailOnTicketAssign: true,
		TicketsPerPage:      DefaultTicketsPerPage,
		UseEmailAsSubmitter: true,
	}
}

func (s Settings) Validate() error {
	if s.TicketsPerPage < 1 || s.TicketsPerPage > MaxTicketsPerPage {
		return fmt.Errorf("tickets_per_page must be between 1 and %d", MaxTicketsPerPage)
	}
	return nil
}
