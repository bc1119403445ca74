package user

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/utils"
)

// RememberToken is a persistent login. The raw token only lives in the
// client cookie; tokenHash is its sha256.
type RememberToken struct {
	id        uint
	userID    uint
	tokenHash string
	userAgent string
	createdAt time.Time
	lastUsed  time.Time
}

// NewRememberToken generates a token for userID and returns the cookie
// value alongside it.
func NewRememberToken(userID uint, userAgent string) (*RememberToken, string, error) {
	if userID == 0 {
		return nil, "", fmt.Errorf("user ID is required")
	}
	tok, err := vo.GenerateToken()
	if err != nil {
		return nil, "", err
	}
	now := biztime.NowUTC()
	rt := &RememberToken{
		userID:    userID,
		tokenHash: tok.Hash(),
		userAgent: utils.Truncate(userAgent, constants.RememberUserAgentMaxLen),
		createdAt: now,
		lastUsed:  now,
	}
	return rt, FormatRememberCookie(userID, tok.Value()), nil
}

func ReconstructRememberToken(id, userID uint, tokenHash, userAgent string, createdAt, lastUsed time.Time) *RememberToken {
	return &RememberToken{
		id:        id,
		userID:    userID,
		tokenHash: tokenHash,
		userAgent: userAgent,
		createdAt: createdAt,
		lastUsed:  lastUsed,
	}
}

func (t *RememberToken) ID() uint {
	return t.id
}

func (t *RememberToken) UserID() uint {
	return t.userID
}

func (t *RememberToken) TokenHash() string {
	return t.tokenHash
}

func (t *RememberToken) UserAgent() string {
	return t.userAgent
}

func (t *RememberToken) CreatedAt() time.Time {
	return t.createdAt
}

func (t *RememberToken) LastUsed() time.Time {
	return t.lastUsed
}

func (t *RememberToken) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("remember token ID is already set")
	}
	t.id = id
	return nil
}

// MatchesUserAgent checks the stored agent's leading characters against the
// presenting client.
func (t *RememberToken) MatchesUserAgent(userAgent string) bool {
	prefix := utils.Truncate(t.userAgent, constants.RememberUserAgentPrefixLen)
	return strings.HasPrefix(userAgent, prefix)
}

func (t *RememberToken) Touch(at time.Time) {
	t.lastUsed = at
}

func FormatRememberCookie(userID uint, rawToken string) string {
	return strconv.FormatUint(uint64(userID), 10) + ":" + rawToken
}

// ParseRememberCookie splits "<userID>:<rawToken>". ok is false for anything
// malformed.
func ParseRememberCookie(value string) (userID uint, rawToken string, ok bool) {
	idPart, tokenPart, found := strings.Cut(value, ":")
	if !found || idPart == "" || tokenPart == "" {
		return 0, "", false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	if _, err := vo.NewTokenFromValue(tokenPart); err != nil {
		return 0, "", false
	}
	return uint(id), tokenPart, true
}
