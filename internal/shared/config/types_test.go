package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailConfig_FromAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmailConfig
		want string
	}{
		{"default from wins", EmailConfig{DefaultFromEmail: "desk@example.com", SMTPUser: "smtp@example.com"}, "desk@example.com"},
		{"None falls through", EmailConfig{DefaultFromEmail: "None", SMTPUser: "smtp@example.com"}, "smtp@example.com"},
		{"server email", EmailConfig{ServerEmail: "root@example.com"}, "root@example.com"},
		{"fallback", EmailConfig{DefaultFromEmail: " ", ServerEmail: "None"}, "webmaster@localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.FromAddress())
		})
	}
}
