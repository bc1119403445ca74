package valueobjects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMailboxConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MailboxConfig
		wantErr bool
	}{
		{name: "no mailbox", cfg: MailboxConfig{}},
		{name: "imap ok", cfg: MailboxConfig{Type: MailboxIMAP, Host: "imap.example.com", User: "support"}},
		{name: "imap without host", cfg: MailboxConfig{Type: MailboxIMAP, User: "support"}, wantErr: true},
		{name: "pop3 without user", cfg: MailboxConfig{Type: MailboxPOP3, Host: "pop.example.com"}, wantErr: true},
		{name: "local needs dir", cfg: MailboxConfig{Type: MailboxLocal}, wantErr: true},
		{name: "local ok", cfg: MailboxConfig{Type: MailboxLocal, LocalDir: "/var/mail/helpdesk"}},
		{name: "unknown type", cfg: MailboxConfig{Type: "exchange"}, wantErr: true},
		{name: "bad port", cfg: MailboxConfig{Type: MailboxLocal, LocalDir: "/x", Port: 70000}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMailboxConfig_Defaults(t *testing.T) {
	c := MailboxConfig{Type: MailboxIMAP, SSL: true}
	assert.Equal(t, 993, c.EffectivePort())
	assert.Equal(t, "INBOX", c.Folder())
	assert.Equal(t, 5*time.Minute, c.Interval())

	c = MailboxConfig{Type: MailboxPOP3, Port: 1110, IntervalMinutes: 2}
	assert.Equal(t, 1110, c.EffectivePort())
	assert.Equal(t, 2*time.Minute, c.Interval())
	assert.Equal(t, 110, MailboxPOP3.DefaultPort(false))
}
