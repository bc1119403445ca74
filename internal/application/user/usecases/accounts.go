package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/user/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type CreateAccountCommand struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
}

// AccountUseCase creates users: self-registration, first-run setup and
// admin creation share the same checks.
type AccountUseCase struct {
	users  user.Repository
	hasher user.PasswordHasher
	policy *access.Policy
	pwCfg  config.PasswordConfig
	logger logger.Interface
}

func NewAccountUseCase(
	users user.Repository,
	hasher user.PasswordHasher,
	policy *access.Policy,
	pwCfg config.PasswordConfig,
	logger logger.Interface,
) *AccountUseCase {
	return &AccountUseCase{
		users:  users,
		hasher: hasher,
		policy: policy,
		pwCfg:  pwCfg,
		logger: logger,
	}
}

// Register creates an active non-staff account.
func (uc *AccountUseCase) Register(ctx context.Context, cmd CreateAccountCommand) (*dto.UserDTO, error) {
	uc.logger.Infow("executing register use case", "username", cmd.Username)

	cmd.IsStaff, cmd.IsSuperuser = false, false
	return uc.create(ctx, cmd)
}

// Setup creates the first superuser. It is refused once one exists.
func (uc *AccountUseCase) Setup(ctx context.Context, cmd CreateAccountCommand) (*dto.UserDTO, error) {
	uc.logger.Infow("executing initial setup use case", "username", cmd.Username)

	exists, err := uc.users.HasSuperuser(ctx)
	if err != nil {
		uc.logger.Errorw("failed to check for superuser", "error", err)
		return nil, errors.NewInternalError("failed to check setup state")
	}
	if exists {
		return nil, errors.NewConflictError("setup has already been completed")
	}
	cmd.IsStaff, cmd.IsSuperuser = true, true
	return uc.create(ctx, cmd)
}

// Create is the admin path; it may grant staff and superuser.
func (uc *AccountUseCase) Create(ctx context.Context, actor access.Actor, cmd CreateAccountCommand) (*dto.UserDTO, error) {
	uc.logger.Infow("executing create user use case", "username", cmd.Username, "user_id", actor.UserID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	return uc.create(ctx, cmd)
}

// Provision creates an account from the command line, where whoever can run
// the binary already controls the database.
func (uc *AccountUseCase) Provision(ctx context.Context, cmd CreateAccountCommand) (*dto.UserDTO, error) {
	uc.logger.Infow("executing provision user use case", "username", cmd.Username, "superuser", cmd.IsSuperuser)

	if cmd.IsSuperuser {
		cmd.IsStaff = true
	}
	return uc.create(ctx, cmd)
}

func (uc *AccountUseCase) create(ctx context.Context, cmd CreateAccountCommand) (*dto.UserDTO, error) {
	email, err := vo.NewEmail(cmd.Email)
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), "email")
	}
	if err := uc.checkPassword(cmd.Password); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(cmd.Username)

	taken, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		uc.logger.Errorw("failed to check username", "error", err)
		return nil, errors.NewInternalError("failed to create user")
	}
	if taken {
		return nil, errors.NewValidationError("a user with that username already exists", "username")
	}
	taken, err = uc.users.ExistsByEmail(ctx, email.String())
	if err != nil {
		uc.logger.Errorw("failed to check email", "error", err)
		return nil, errors.NewInternalError("failed to create user")
	}
	if taken {
		return nil, errors.NewValidationError("a user with that email address already exists", "email")
	}

	hash, err := uc.hasher.Hash(cmd.Password)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return nil, errors.NewInternalError("failed to create user")
	}
	u, err := user.NewUser(username, email, hash, cmd.IsStaff, cmd.IsSuperuser)
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), "username")
	}
	u.SetName(cmd.FirstName, cmd.LastName)

	if err := uc.users.Create(ctx, u); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewValidationError("a user with that username or email already exists")
		}
		uc.logger.Errorw("failed to create user", "username", username, "error", err)
		return nil, errors.NewInternalError("failed to create user")
	}

	uc.logger.Infow("user created successfully", "user_id", u.ID(), "staff", u.IsStaff(), "superuser", u.IsSuperuser())
	return dto.ToUserDTO(u), nil
}

func (uc *AccountUseCase) checkPassword(pw string) error {
	return checkPassword(uc.pwCfg, pw)
}

func checkPassword(cfg config.PasswordConfig, pw string) error {
	minLen := cfg.MinLength
	if minLen <= 0 {
		minLen = 8
	}
	if len(pw) < minLen {
		return errors.NewValidationError(fmt.Sprintf("password must be at least %d characters", minLen), "password")
	}
	if len(pw) > 72 {
		return errors.NewValidationError("password must be at most 72 bytes", "password")
	}
	return nil
}

// SettingsUseCase reads and writes the caller's preferences.
type SettingsUseCase struct {
	settings user.SettingsRepository
	policy   *access.Policy
	logger   logger.Interface
}

func NewSettingsUseCase(settings user.SettingsRepository, policy *access.Policy, logger logger.Interface) *SettingsUseCase {
	return &SettingsUseCase{
		settings: settings,
		policy:   policy,
		logger:   logger,
	}
}

func (uc *SettingsUseCase) Get(ctx context.Context, actor access.Actor) (*dto.SettingsDTO, error) {
	if err := uc.policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	s, err := uc.settings.Get(ctx, actor.UserID)
	if err != nil {
		uc.logger.Errorw("failed to get user settings", "user_id", actor.UserID, "error", err)
		return nil, errors.NewInternalError("failed to load settings")
	}
	d := dto.ToSettingsDTO(s)
	return &d, nil
}

func (uc *SettingsUseCase) Save(ctx context.Context, actor access.Actor, in dto.SettingsDTO) (*dto.SettingsDTO, error) {
	uc.logger.Infow("executing save settings use case", "user_id", actor.UserID)

	if err := uc.policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	s := in.ToSettings()
	if err := s.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error(), "tickets_per_page")
	}
	if err := uc.settings.Save(ctx, actor.UserID, s); err != nil {
		uc.logger.Errorw("failed to save user settings", "user_id", actor.UserID, "error", err)
		return nil, errors.NewInternalError("failed to save settings")
	}
	d := dto.ToSettingsDTO(s)
	return &d, nil
}
