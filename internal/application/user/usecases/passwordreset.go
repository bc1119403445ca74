package usecases

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const resetConfirmPath = "/password-reset/confirm"

type RequestPasswordResetCommand struct {
	Email    string
	ClientIP string
}

// RequestPasswordResetUseCase mails a reset link to every active account
// using the address. The caller never learns whether any account matched.
type RequestPasswordResetUseCase struct {
	users   user.Repository
	tokens  user.PasswordResetTokenRepository
	mailer  ResetMailer
	limiter RateLimiter
	authCfg config.AuthConfig
	baseURL string
	logger  logger.Interface
}

func NewRequestPasswordResetUseCase(
	users user.Repository,
	tokens user.PasswordResetTokenRepository,
	mailer ResetMailer,
	limiter RateLimiter,
	authCfg config.AuthConfig,
	baseURL string,
	logger logger.Interface,
) *RequestPasswordResetUseCase {
	return &RequestPasswordResetUseCase{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		limiter: limiter,
		authCfg: authCfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (uc *RequestPasswordResetUseCase) Execute(ctx context.Context, cmd RequestPasswordResetCommand) error {
	uc.logger.Infow("executing request password reset use case", "client_ip", cmd.ClientIP)

	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := vo.NewEmail(email); err != nil {
		return errors.NewValidationError(err.Error(), "email")
	}
	if err := uc.checkRate(ctx, "reset:ip:"+cmd.ClientIP); err != nil {
		return err
	}
	if err := uc.checkRate(ctx, "reset:email:"+email); err != nil {
		return err
	}

	users, err := uc.users.FindActiveByEmail(ctx, email)
	if err != nil {
		uc.logger.Errorw("failed to find users for password reset", "error", err)
		return nil
	}
	if len(users) == 0 {
		uc.logger.Infow("password reset requested for unknown email")
		return nil
	}

	ttl := time.Duration(uc.authCfg.Reset.ExpiresMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := biztime.NowUTC()
	for _, u := range users {
		t, raw, err := user.NewPasswordResetToken(u.ID(), now, ttl)
		if err != nil {
			uc.logger.Errorw("failed to generate reset token", "user_id", u.ID(), "error", err)
			continue
		}
		if err := uc.tokens.Create(ctx, t); err != nil {
			uc.logger.Errorw("failed to store reset token", "user_id", u.ID(), "error", err)
			continue
		}
		link := uc.baseURL + resetConfirmPath + "?token=" + url.QueryEscape(raw)
		if err := uc.mailer.SendPasswordReset(ctx, u.Email().String(), u.Username(), link); err != nil {
			uc.logger.Warnw("failed to send password reset email", "user_id", u.ID(), "error", err)
			continue
		}
		uc.logger.Infow("password reset link sent", "user_id", u.ID())
	}
	return nil
}

// checkRate fails open: a limiter outage must not block resets.
func (uc *RequestPasswordResetUseCase) checkRate(ctx context.Context, key string) error {
	if uc.limiter == nil {
		return nil
	}
	window := time.Duration(uc.authCfg.RateLimit.WindowSeconds) * time.Second
	ok, err := uc.limiter.Allow(ctx, key, uc.authCfg.RateLimit.ResetAttempts, window)
	if err != nil {
		uc.logger.Warnw("rate limiter unavailable", "key", key, "error", err)
		return nil
	}
	if !ok {
		return errors.NewRateLimitedError("too many password reset requests, please try again later")
	}
	return nil
}

type ConfirmPasswordResetCommand struct {
	Token       string
	NewPassword string
}

type ConfirmPasswordResetUseCase struct {
	users    user.Repository
	tokens   user.PasswordResetTokenRepository
	remember user.RememberTokenRepository
	hasher   user.PasswordHasher
	txMgr    db.TxRunner
	pwCfg    config.PasswordConfig
	logger   logger.Interface
}

func NewConfirmPasswordResetUseCase(
	users user.Repository,
	tokens user.PasswordResetTokenRepository,
	remember user.RememberTokenRepository,
	hasher user.PasswordHasher,
	txMgr db.TxRunner,
	pwCfg config.PasswordConfig,
	logger logger.Interface,
) *ConfirmPasswordResetUseCase {
	return &ConfirmPasswordResetUseCase{
		users:    users,
		tokens:   tokens,
		remember: remember,
		hasher:   hasher,
		txMgr:    txMgr,
		pwCfg:    pwCfg,
		logger:   logger,
	}
}

// Check reports whether token would be accepted by Execute, without
// consuming it.
func (uc *ConfirmPasswordResetUseCase) Check(ctx context.Context, token string) error {
	_, _, err := uc.usable(ctx, token, biztime.NowUTC())
	return err
}

// Execute sets the new password, burns the token and forgets every
// remembered login of the user.
func (uc *ConfirmPasswordResetUseCase) Execute(ctx context.Context, cmd ConfirmPasswordResetCommand) error {
	uc.logger.Infow("executing confirm password reset use case")

	if _, err := vo.NewTokenFromValue(cmd.Token); err != nil {
		return invalidResetLink()
	}
	if err := checkPassword(uc.pwCfg, cmd.NewPassword); err != nil {
		return err
	}
	now := biztime.NowUTC()
	t, u, err := uc.usable(ctx, cmd.Token, now)
	if err != nil {
		return err
	}

	hash, err := uc.hasher.Hash(cmd.NewPassword)
	if err != nil {
		uc.logger.Errorw("failed to hash password", "error", err)
		return errors.NewInternalError("failed to reset password")
	}
	if err := u.ChangePasswordHash(hash); err != nil {
		return errors.NewValidationError(err.Error(), "password")
	}
	if err := t.Consume(now); err != nil {
		return invalidResetLink()
	}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.users.Update(txCtx, u); err != nil {
			return err
		}
		if err := uc.tokens.MarkUsed(txCtx, t.ID(), now); err != nil {
			return err
		}
		return uc.remember.DeleteByUser(txCtx, u.ID())
	})
	if err != nil {
		uc.logger.Errorw("password reset rolled back", "user_id", u.ID(), "error", err)
		return errors.NewInternalError("failed to reset password")
	}

	uc.logger.Infow("password reset completed", "user_id", u.ID())
	return nil
}

func invalidResetLink() error {
	return errors.NewValidationError("the password reset link is invalid or has expired", "token")
}

// usable resolves a raw token to its record and active owner.
func (uc *ConfirmPasswordResetUseCase) usable(ctx context.Context, raw string, now time.Time) (*user.PasswordResetToken, *user.User, error) {
	if _, err := vo.NewTokenFromValue(raw); err != nil {
		return nil, nil, invalidResetLink()
	}
	t, err := uc.tokens.GetByHash(ctx, vo.HashToken(raw))
	if err != nil {
		uc.logger.Errorw("failed to get reset token", "error", err)
		return nil, nil, errors.NewInternalError("failed to reset password")
	}
	if t == nil || !t.IsUsable(now) {
		return nil, nil, invalidResetLink()
	}
	u, err := uc.users.GetByID(ctx, t.UserID())
	if err != nil {
		uc.logger.Errorw("failed to get user for reset", "user_id", t.UserID(), "error", err)
		return nil, nil, errors.NewInternalError("failed to reset password")
	}
	if u == nil || !u.IsActive() {
		return nil, nil, invalidResetLink()
	}
	return t, u, nil
}
