package config

import (
	"fmt"
	"strings"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	Timezone       string   `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
	MinLength  int `mapstructure:"min_length"`
}

type JWTConfig struct {
	Secret          string `mapstructure:"secret"`
	SessionExpHours int    `mapstructure:"session_exp_hours"`
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

type RememberConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	ExpDays    int    `mapstructure:"exp_days"`
}

type ResetConfig struct {
	ExpiresMinutes int `mapstructure:"expires_minutes"`
}

type RateLimitConfig struct {
	LoginAttempts int `mapstructure:"login_attempts"`
	ResetAttempts int `mapstructure:"reset_attempts"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type AuthConfig struct {
	Password  PasswordConfig  `mapstructure:"password"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Remember  RememberConfig  `mapstructure:"remember"`
	Reset     ResetConfig     `mapstructure:"reset"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type EmailConfig struct {
	SMTPHost         string `mapstructure:"smtp_host"`
	SMTPPort         int    `mapstructure:"smtp_port"`
	SMTPUser         string `mapstructure:"smtp_user"`
	SMTPPassword     string `mapstructure:"smtp_password"`
	DefaultFromEmail string `mapstructure:"default_from_email"`
	ServerEmail      string `mapstructure:"server_email"`
	FromName         string `mapstructure:"from_name"`
	SendTimeoutSecs  int    `mapstructure:"send_timeout_seconds"`

	// TemplatesDir holds <name>.tmpl files overriding the built-in mails.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// FromAddress resolves the sender used for outgoing mail:
// default_from_email, then smtp_user, then server_email, then webmaster@localhost.
// The literal "None" counts as unset.
func (e *EmailConfig) FromAddress() string {
	for _, candidate := range []string{e.DefaultFromEmail, e.SMTPUser, e.ServerEmail} {
		v := strings.TrimSpace(candidate)
		if v != "" && v != "None" {
			return v
		}
	}
	return "webmaster@localhost"
}

// RedisConfig is optional. When disabled the rate limiters keep their
// counters in process memory.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type AttachmentConfig struct {
	Dir               string   `mapstructure:"dir"`
	MaxBytes          int64    `mapstructure:"max_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type MailboxConfig struct {
	PollSpec          string   `mapstructure:"poll_spec"`
	DialTimeoutSecs   int      `mapstructure:"dial_timeout_seconds"`
	DeleteAfterFetch  bool     `mapstructure:"delete_after_fetch"`
	OAuthTokenURL     string   `mapstructure:"oauth_token_url"`
	OAuthClientID     string   `mapstructure:"oauth_client_id"`
	OAuthClientSecret string   `mapstructure:"oauth_client_secret"`
	OAuthScopes       []string `mapstructure:"oauth_scopes"`
}

type EscalationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CasbinConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

type ExtraStatus struct {
	Name  string `mapstructure:"name"`
	Label string `mapstructure:"label"`
}

// HelpdeskConfig carries the feature switches that change ticket and KB behaviour.
type HelpdeskConfig struct {
	KBEnabled                        bool          `mapstructure:"kb_enabled"`
	ViewTicketPublic                 bool          `mapstructure:"view_ticket_public"`
	AllowNonStaffTicketUpdate        bool          `mapstructure:"allow_non_staff_ticket_update"`
	PerQueueStaffPermission          bool          `mapstructure:"per_queue_staff_permission"`
	PublicTicketForm                 string        `mapstructure:"public_ticket_form"`
	StaffTicketForm                  string        `mapstructure:"staff_ticket_form"`
	ExtraStatuses                    []ExtraStatus `mapstructure:"extra_statuses"`
	SubmitterAcceptResolutionComment string        `mapstructure:"submitter_accept_resolution_comment"`
	DefaultPriority                  int           `mapstructure:"default_priority"`
}
