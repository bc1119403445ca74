package access

import (
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/domain/user"
)

type ActorKind int

const (
	ActorAnonymous ActorKind = iota
	ActorUser
	ActorStaff
	// ActorSystem is the mail poller and the escalation job.
	ActorSystem
)

func (k ActorKind) String() string {
	switch k {
	case ActorUser:
		return "user"
	case ActorStaff:
		return "staff"
	case ActorSystem:
		return "system"
	default:
		return "anonymous"
	}
}

// Actor is whoever is performing a ticket operation. Anonymous actors
// carry the email and secret key they presented.
type Actor struct {
	Kind        ActorKind
	UserID      uint
	Email       string
	SecretKey   string
	IsSuperuser bool
}

func AnonymousActor(email, secretKey string) Actor {
	return Actor{
		Kind:      ActorAnonymous,
		Email:     strings.TrimSpace(email),
		SecretKey: strings.TrimSpace(secretKey),
	}
}

// SystemActor is used by background jobs. email is the sender for mail
// ingestion and empty otherwise.
func SystemActor(email string) Actor {
	return Actor{Kind: ActorSystem, Email: strings.TrimSpace(email)}
}

func ActorFromUser(u *user.User) Actor {
	kind := ActorUser
	if u.IsStaff() {
		kind = ActorStaff
	}
	return Actor{
		Kind:        kind,
		UserID:      u.ID(),
		Email:       u.Email().String(),
		IsSuperuser: u.IsSuperuser(),
	}
}

func (a Actor) IsAuthenticated() bool {
	return a.Kind == ActorUser || a.Kind == ActorStaff
}

// UserIDPtr is nil for actors without an account.
func (a Actor) UserIDPtr() *uint {
	if !a.IsAuthenticated() || a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
