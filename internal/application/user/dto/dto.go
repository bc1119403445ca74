package dto

import (
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

type UserDTO struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	DisplayName string     `json:"display_name"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	Role        string     `json:"role"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"date_joined"`
}

type SettingsDTO struct {
	LoginViewTicketList bool `json:"login_view_ticketlist"`
	EmailOnTicketChange bool `json:"email_on_ticket_change"`
	EmailOnTicketAssign bool `json:"email_on_ticket_assign"`
	TicketsPerPage      int  `json:"tickets_per_page"`
	UseEmailAsSubmitter bool `json:"use_email_as_submitter"`
}

func ToUserDTO(u *user.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID(),
		Username:    u.Username(),
		Email:       u.Email().String(),
		FirstName:   u.FirstName(),
		LastName:    u.LastName(),
		DisplayName: u.DisplayName(),
		IsStaff:     u.IsStaff(),
		IsSuperuser: u.IsSuperuser(),
		IsActive:    u.IsActive(),
		Role:        string(u.Role()),
		LastLogin:   u.LastLogin(),
		CreatedAt:   u.CreatedAt(),
	}
}

func ToSettingsDTO(s user.Settings) SettingsDTO {
	return SettingsDTO{
		LoginViewTicketList: s.LoginViewTicketList,
		EmailOnTicketChange: s.EmailOnTicketChange,
		EmailOnTicketAssign: s.EmailOnTicketAssign,
		TicketsPerPage:      s.TicketsPerPage,
		UseEmailAsSubmitter: s.UseEmailAsSubmitter,
	}
}

func (d SettingsDTO) ToSettings() user.Settings {
	return user.Settings{
		LoginViewTicketList: d.LoginViewTicketList,
		EmailOnTicketChange: d.EmailOnTicketChange,
		EmailOnTicketAssign: d.EmailOnTicketAssign,
		TicketsPerPage:      d.TicketsPerPage,
		UseEmailAsSubmitter: d.UseEmailAsSubmitter,
	}
}
