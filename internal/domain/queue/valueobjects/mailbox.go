package valueobjects

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type MailboxType string

const (
	MailboxNone  MailboxType = ""
	MailboxIMAP  MailboxType = "imap"
	MailboxPOP3  MailboxType = "pop3"
	MailboxLocal MailboxType = "local"
	MailboxOAuth MailboxType = "oauth"
)

const defaultPollInterval = 5 * time.Minute

func (t MailboxType) String() string {
	return string(t)
}

// DefaultPort is the well-known port for the type and TLS setting.
func (t MailboxType) DefaultPort(ssl bool) int {
	switch t {
	case MailboxIMAP, MailboxOAuth:
		if ssl {
			return 993
		}
		return 143
	case MailboxPOP3:
		if ssl {
			return 995
		}
		return 110
	default:
		return 0
	}
}

// MailboxConfig describes where a queue fetches inbound mail from.
type MailboxConfig struct {
	Type            MailboxType `validate:"omitempty,oneof=imap pop3 local oauth"`
	Host            string      `validate:"required_if=Type imap,required_if=Type pop3,required_if=Type oauth"`
	Port            int         `validate:"gte=0,lte=65535"`
	SSL             bool
	User            string `validate:"required_if=Type imap,required_if=Type pop3,required_if=Type oauth"`
	Password        string
	IMAPFolder      string
	LocalDir        string `validate:"required_if=Type local"`
	IntervalMinutes int    `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks the config against its type. An empty type is valid and
// means the queue has no mailbox.
func (c MailboxConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return fmt.Errorf("invalid mailbox configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid mailbox configuration: %w", err)
	}
	return nil
}

func (c MailboxConfig) IsConfigured() bool {
	return c.Type != MailboxNone
}

// EffectivePort falls back to the type's default when Port is zero.
func (c MailboxConfig) EffectivePort() int {
	if c.Port > 0 {
		return c.Port
	}
	return c.Type.DefaultPort(c.SSL)
}

// Folder is the IMAP folder, INBOX by default.
func (c MailboxConfig) Folder() string {
	if c.IMAPFolder == "" {
		return "INBOX"
	}
	return c.IMAPFolder
}

func (c MailboxConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}
