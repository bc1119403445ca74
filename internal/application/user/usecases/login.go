package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/user/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const invalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type LoginCommand struct {
	// Identifier is a username or an email address.
	Identifier string
	Password   string
	Remember   bool
	UserAgent  string
	// RememberCookie is the remember-me cookie the browser sent, if any.
	// Logging in without Remember revokes it.
	RememberCookie string
}

type LoginResult struct {
	User             *dto.UserDTO
	SessionToken     string
	SessionExpiresAt time.Time
	// RememberCookie is empty unless Remember was set.
	RememberCookie string
	// ClearRememberCookie asks the caller to drop the browser's cookie.
	ClearRememberCookie bool
}

type LoginUseCase struct {
	users    user.Repository
	remember user.RememberTokenRepository
	hasher   user.PasswordHasher
	sessions SessionIssuer
	logger   logger.Interface
}

func NewLoginUseCase(
	users user.Repository,
	remember user.RememberTokenRepository,
	hasher user.PasswordHasher,
	sessions SessionIssuer,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		users:    users,
		remember: remember,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	uc.logger.Infow("executing login use case", "remember", cmd.Remember)

	ident := strings.TrimSpace(cmd.Identifier)
	if ident == "" || cmd.Password == "" {
		return nil, errors.NewValidationError("username and password are required")
	}
	u, err := uc.resolve(ctx, ident)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.CanLogin() {
		return nil, errors.NewUnauthorizedError(invalidCredentials)
	}
	if err := uc.hasher.Verify(cmd.Password, u.PasswordHash()); err != nil {
		uc.logger.Warnw("login failed", "user_id", u.ID())
		return nil, errors.NewUnauthorizedError(invalidCredentials)
	}

	token, exp, err := uc.sessions.Issue(u)
	if err != nil {
		uc.logger.Errorw("failed to issue session", "user_id", u.ID(), "error", err)
		return nil, errors.NewInternalError("failed to log in")
	}
	res := &LoginResult{SessionToken: token, SessionExpiresAt: exp}

	if cmd.Remember {
		rt, raw, err := user.NewRememberToken(u.ID(), cmd.UserAgent)
		if err != nil {
			uc.logger.Errorw("failed to generate remember token", "user_id", u.ID(), "error", err)
			return nil, errors.NewInternalError("failed to log in")
		}
		if err := uc.remember.Create(ctx, rt); err != nil {
			uc.logger.Errorw("failed to store remember token", "user_id", u.ID(), "error", err)
			return nil, errors.NewInternalError("failed to log in")
		}
		res.RememberCookie = user.FormatRememberCookie(u.ID(), raw)
	} else if cmd.RememberCookie != "" {
		uc.revokePresented(ctx, cmd.RememberCookie)
		res.ClearRememberCookie = true
	}

	if uc.hasher.NeedsRehash(u.PasswordHash()) {
		uc.rehash(u, cmd.Password)
	}

	u.RecordLogin(biztime.NowUTC())
	if err := uc.users.Update(ctx, u); err != nil {
		uc.logger.Warnw("failed to record last login", "user_id", u.ID(), "error", err)
	}

	uc.logger.Infow("user logged in successfully", "user_id", u.ID(), "remember", cmd.Remember)
	res.User = dto.ToUserDTO(u)
	return res, nil
}

// rehash upgrades the stored hash; it is saved with the login timestamp.
func (uc *LoginUseCase) rehash(u *user.User, password string) {
	hash, err := uc.hasher.Hash(password)
	if err == nil {
		err = u.ChangePasswordHash(hash)
	}
	if err != nil {
		uc.logger.Warnw("failed to upgrade password hash", "user_id", u.ID(), "error", err)
	}
}

// revokePresented deletes the token behind a cookie the user opted out of.
// Failures are logged only; the cookie is cleared either way.
func (uc *LoginUseCase) revokePresented(ctx context.Context, cookie string) {
	cookieUser, raw, ok := user.ParseRememberCookie(cookie)
	if !ok {
		return
	}
	if err := uc.remember.DeleteByUserAndHash(ctx, cookieUser, vo.HashToken(raw)); err != nil {
		uc.logger.Warnw("failed to revoke remember token", "user_id", cookieUser, "error", err)
	}
}

// resolve tries the identifier as a username, then as an email address.
// An email shared by several active accounts matches nobody.
func (uc *LoginUseCase) resolve(ctx context.Context, ident string) (*user.User, error) {
	u, err := uc.users.GetByUsername(ctx, ident)
	if err != nil {
		uc.logger.Errorw("failed to get user by username", "error", err)
		return nil, errors.NewInternalError("failed to log in")
	}
	if u != nil {
		return u, nil
	}
	if !strings.Contains(ident, "@") {
		return nil, nil
	}
	matches, err := uc.users.FindActiveByEmail(ctx, ident)
	if err != nil {
		uc.logger.Errorw("failed to find user by email", "error", err)
		return nil, errors.NewInternalError("failed to log in")
	}
	if len(matches) != 1 {
		if len(matches) > 1 {
			uc.logger.Warnw("login email matches several accounts", "count", len(matches))
		}
		return nil, nil
	}
	return matches[0], nil
}

// RememberAuthUseCase turns a remember-me cookie back into a user. Every
// failure means "not remembered" and is never reported as an error.
type RememberAuthUseCase struct {
	users    user.Repository
	remember user.RememberTokenRepository
	sessions SessionIssuer
	logger   logger.Interface
}

func NewRememberAuthUseCase(users user.Repository, remember user.RememberTokenRepository, sessions SessionIssuer, logger logger.Interface) *RememberAuthUseCase {
	return &RememberAuthUseCase{
		users:    users,
		remember: remember,
		sessions: sessions,
		logger:   logger,
	}
}

type RememberAuthResult struct {
	User             *user.User
	SessionToken     string
	SessionExpiresAt time.Time
}

// Execute returns nil when the cookie does not authenticate anyone.
func (uc *RememberAuthUseCase) Execute(ctx context.Context, cookie, userAgent string) *RememberAuthResult {
	userID, raw, ok := user.ParseRememberCookie(cookie)
	if !ok {
		return nil
	}
	rt, err := uc.remember.GetByUserAndHash(ctx, userID, vo.HashToken(raw))
	if err != nil {
		uc.logger.Warnw("remember token lookup failed", "user_id", userID, "error", err)
		return nil
	}
	if rt == nil || !rt.MatchesUserAgent(userAgent) {
		return nil
	}
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil || u == nil || !u.CanLogin() {
		return nil
	}
	token, exp, err := uc.sessions.Issue(u)
	if err != nil {
		uc.logger.Warnw("failed to issue session from remember token", "user_id", userID, "error", err)
		return nil
	}
	now := biztime.NowUTC()
	if err := uc.remember.TouchLastUsed(ctx, rt.ID(), now); err != nil {
		uc.logger.Warnw("failed to touch remember token", "user_id", userID, "error", err)
	}
	uc.logger.Infow("user authenticated by remember token", "user_id", userID)
	return &RememberAuthResult{User: u, SessionToken: token, SessionExpiresAt: exp}
}

type LogoutUseCase struct {
	remember user.RememberTokenRepository
	logger   logger.Interface
}

func NewLogoutUseCase(remember user.RememberTokenRepository, logger logger.Interface) *LogoutUseCase {
	return &LogoutUseCase{
		remember: remember,
		logger:   logger,
	}
}

// Execute drops the presented remember token. The session cookie itself is
// cleared by the caller.
func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, rememberCookie string) error {
	uc.logger.Infow("executing logout use case", "user_id", userID)

	cookieUser, raw, ok := user.ParseRememberCookie(rememberCookie)
	if !ok || (userID != 0 && cookieUser != userID) {
		return nil
	}
	if err := uc.remember.DeleteByUserAndHash(ctx, cookieUser, vo.HashToken(raw)); err != nil {
		uc.logger.Errorw("failed to delete remember token", "user_id", cookieUser, "error", err)
		return errors.NewInternalError("failed to log out")
	}
	uc.logger.Infow("user logged out successfully", "user_id", cookieUser)
	return nil
}
