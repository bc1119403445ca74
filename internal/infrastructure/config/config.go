package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/openhelpdesk/helpdesk/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig     `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig       `mapstructure:"auth"`
	Email       sharedConfig.EmailConfig      `mapstructure:"email"`
	Redis       sharedConfig.RedisConfig      `mapstructure:"redis"`
	Attachments sharedConfig.AttachmentConfig `mapstructure:"attachments"`
	Mailbox     sharedConfig.MailboxConfig    `mapstructure:"mailbox"`
	Escalation  sharedConfig.EscalationConfig `mapstructure:"escalation"`
	Metrics     sharedConfig.MetricsConfig    `mapstructure:"metrics"`
	Casbin      sharedConfig.CasbinConfig     `mapstructure:"casbin"`
	Helpdesk    sharedConfig.HelpdeskConfig   `mapstructure:"helpdesk"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath overrides the search paths when set.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("HELPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus HELPDESK_* variables still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "helpdesk_dev")
	v.SetDefault("database.path", "helpdesk.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.password.bcrypt_cost", 12)
	v.SetDefault("auth.password.min_length", 8)
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.session_exp_hours", 24)
	v.SetDefault("auth.cookie.domain", "")
	v.SetDefault("auth.cookie.path", "/")
	v.SetDefault("auth.cookie.secure", false)
	v.SetDefault("auth.cookie.same_site", "Lax")
	v.SetDefault("auth.remember.cookie_name", "helpdesk_remember")
	v.SetDefault("auth.remember.exp_days", 30)
	v.SetDefault("auth.reset.expires_minutes", 60)
	v.SetDefault("auth.rate_limit.login_attempts", 10)
	v.SetDefault("auth.rate_limit.reset_attempts", 3)
	v.SetDefault("auth.rate_limit.window_seconds", 60)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.default_from_email", "")
	v.SetDefault("email.server_email", "")
	v.SetDefault("email.from_name", "Helpdesk")
	v.SetDefault("email.send_timeout_seconds", 10)
	v.SetDefault("email.templates_dir", "")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("attachments.dir", "./data/attachments")
	v.SetDefault("attachments.max_bytes", 10*1024*1024)
	v.SetDefault("attachments.allowed_extensions", []string{
		".txt", ".asc", ".htm", ".html", ".pdf", ".doc", ".docx", ".odt", ".jpg", ".jpeg", ".png", ".eml",
	})

	v.SetDefault("mailbox.poll_spec", "@every 1m")
	v.SetDefault("mailbox.dial_timeout_seconds", 10)
	v.SetDefault("mailbox.delete_after_fetch", true)

	v.SetDefault("escalation.enabled", true)
	v.SetDefault("escalation.spec", "@hourly")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("casbin.model_path", "")

	v.SetDefault("helpdesk.kb_enabled", true)
	v.SetDefault("helpdesk.view_ticket_public", false)
	v.SetDefault("helpdesk.allow_non_staff_ticket_update", false)
	v.SetDefault("helpdesk.per_queue_staff_permission", false)
	v.SetDefault("helpdesk.public_ticket_form", "default")
	v.SetDefault("helpdesk.staff_ticket_form", "default")
	v.SetDefault("helpdesk.submitter_accept_resolution_comment", "Submitter accepted resolution and closed ticket")
	v.SetDefault("helpdesk.default_priority", 3)
}
