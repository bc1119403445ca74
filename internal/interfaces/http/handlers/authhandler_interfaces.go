package handlers

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/user/dto"
	"github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
)

// Use case interfaces for AuthHandler - enables unit testing with mocks.

type loginUseCase interface {
	Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.LoginResult, error)
}

type logoutUseCase interface {
	Execute(ctx context.Context, userID uint, rememberCookie string) error
}

type accountUseCase interface {
	Register(ctx context.Context, cmd usecases.CreateAccountCommand) (*dto.UserDTO, error)
	Setup(ctx context.Context, cmd usecases.CreateAccountCommand) (*dto.UserDTO, error)
}

type settingsUseCase interface {
	Get(ctx context.Context, actor access.Actor) (*dto.SettingsDTO, error)
	Save(ctx context.Context, actor access.Actor, in dto.SettingsDTO) (*dto.SettingsDTO, error)
}

type requestPasswordResetUseCase interface {
	Execute(ctx context.Context, cmd usecases.RequestPasswordResetCommand) error
}

type confirmPasswordResetUseCase interface {
	Check(ctx context.Context, token string) error
	Execute(ctx context.Context, cmd usecases.ConfirmPasswordResetCommand) error
}
