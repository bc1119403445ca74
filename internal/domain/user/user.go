package user

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	vo "github.com/openhelpdesk/helpdesk/internal/domain/user/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/authorization"
	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// User is an account that can log in. Customers without an account are
// identified by submitter email on their tickets and never appear here.
type User struct {
	id           uint
	username     string
	email        *vo.Email
	firstName    string
	lastName     string
	passwordHash string
	isStaff      bool
	isSuperuser  bool
	isActive     bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates an active account. Superusers are always staff.
func NewUser(username string, email *vo.Email, passwordHash string, isStaff, isSuperuser bool) (*User, error) {
	username = strings.TrimSpace(username)
	if !usernameRegex.MatchString(username) {
		return nil, fmt.Errorf("invalid username: letters, digits and @.+-_ only, up to 150 characters")
	}
	if email == nil {
		return nil, fmt.Errorf("email is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}

	now := biztime.NowUTC()
	return &User{
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		isStaff:      isStaff || isSuperuser,
		isSuperuser:  isSuperuser,
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

type UserData struct {
	ID           uint
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ReconstructUser(d UserData) (*User, error) {
	if d.ID == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	email, err := vo.NewEmail(d.Email)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", d.ID, err)
	}
	return &User{
		id:           d.ID,
		username:     d.Username,
		email:        email,
		firstName:    d.FirstName,
		lastName:     d.LastName,
		passwordHash: d.PasswordHash,
		isStaff:      d.IsStaff,
		isSuperuser:  d.IsSuperuser,
		isActive:     d.IsActive,
		lastLogin:    d.LastLogin,
		createdAt:    d.CreatedAt,
		updatedAt:    d.UpdatedAt,
	}, nil
}

func (u *User) ID() uint {
	return u.id
}

func (u *User) Username() string {
	return u.username
}

func (u *User) Email() *vo.Email {
	return u.email
}

func (u *User) FirstName() string {
	return u.firstName
}

func (u *User) LastName() string {
	return u.lastName
}

// DisplayName falls back to the username when no name is set.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.firstName + " " + u.lastName)
	if full == "" {
		return u.username
	}
	return full
}

func (u *User) PasswordHash() string {
	return u.passwordHash
}

func (u *User) IsStaff() bool {
	return u.isStaff
}

func (u *User) IsSuperuser() bool {
	return u.isSuperuser
}

func (u *User) IsActive() bool {
	return u.isActive
}

func (u *User) Role() authorization.UserRole {
	return authorization.RoleFor(u.isStaff, u.isSuperuser)
}

func (u *User) LastLogin() *time.Time {
	return u.lastLogin
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

func (u *User) SetName(first, last string) {
	u.firstName = strings.TrimSpace(first)
	u.lastName = strings.TrimSpace(last)
	u.updatedAt = biztime.NowUTC()
}

func (u *User) ChangePasswordHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("password hash is required")
	}
	u.passwordHash = hash
	u.updatedAt = biztime.NowUTC()
	return nil
}

func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = biztime.NowUTC()
}

func (u *User) Activate() {
	u.isActive = true
	u.updatedAt = biztime.NowUTC()
}

func (u *User) RecordLogin(at time.Time) {
	u.lastLogin = &at
}

// CanLogin reports whether the account may authenticate at all.
func (u *User) CanLogin() bool {
	return u.isActive && u.passwordHash != ""
}
