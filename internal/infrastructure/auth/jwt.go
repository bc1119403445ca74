package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

const sessionIssuer = "helpdesk"

// Claims is the payload of the session cookie. The subject holds the user ID.
type Claims struct {
	Email string                 `json:"email"`
	Role  authorization.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid session subject %q", c.Subject)
	}
	return uint(id), nil
}

type JWTService struct {
	secret   []byte
	expHours int
}

func NewJWTService(secret string, sessionExpHours int) *JWTService {
	if sessionExpHours <= 0 {
		sessionExpHours = 24
	}
	return &JWTService{
		secret:   []byte(secret),
		expHours: sessionExpHours,
	}
}

// Issue signs a session token for u.
func (s *JWTService) Issue(u *user.User) (string, time.Time, error) {
	now := biztime.NowUTC()
	exp := now.Add(time.Duration(s.expHours) * time.Hour)

	claims := &Claims{
		Email: u.Email().String(),
		Role:  u.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   strconv.FormatUint(uint64(u.ID()), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(sessionIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// MaxAgeSeconds is the cookie lifetime matching the token expiry.
func (s *JWTService) MaxAgeSeconds() int {
	return s.expHours * 3600
}
