package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/forms"
	ticketvo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/auth"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/config"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/email"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/mailbox"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/metrics"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/permission"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/ratelimit"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/scheduler"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/storage"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/template"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

// Container holds the infrastructure, repositories, use cases, handlers and
// background jobs, wired together once at startup. The CLI commands reuse
// it so that a job run by hand behaves exactly like the scheduled one.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	authMiddleware *middleware.AuthMiddleware
	loginLimiter   *middleware.RateLimiter

	// Infrastructure services shared by several use cases
	limiter   middleware.Limiter
	jwtSvc    *auth.JWTService
	hasher    *auth.PasswordHasher
	enforcer  *permission.Enforcer
	policy    *access.Policy
	txMgr     *db.TransactionManager
	renderer  markdown.Renderer
	mailer    *email.SMTPMailer
	files     *storage.FilesystemStore
	mailboxes *mailbox.Client
	parser    *mailbox.Parser
	machine   *ticketvo.StatusMachine
	forms     *forms.Registry
	metrics   *metrics.Prometheus

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer wires every component. Configuration problems such as an
// unknown ticket form or a bad cron spec fail here, before anything serves.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.repos = newRepositories(db, log)
	if err := c.initUseCases(); err != nil {
		return nil, err
	}
	c.initHandlers()
	if err := c.initScheduler(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.cfg

	if cfg.Redis.Enabled {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.limiter = ratelimit.NewRedisRateLimiter(c.redis)
	} else {
		c.limiter = ratelimit.NewMemoryRateLimiter()
	}

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.SessionExpHours)
	c.hasher = auth.NewPasswordHasher(cfg.Auth.Password.BcryptCost)
	c.txMgr = db.NewTransactionManager(c.db)
	c.renderer = markdown.NewRenderer()
	c.metrics = metrics.NewPrometheus()

	enforcer, err := permission.NewEnforcer(c.db, cfg.Casbin.ModelPath, c.log.Named("casbin"))
	if err != nil {
		return fmt.Errorf("failed to initialize queue permissions: %w", err)
	}
	c.enforcer = enforcer
	c.policy = access.NewPolicy(cfg.Helpdesk, enforcer, c.log.Named("access"))

	extras := make([]ticketvo.ExtraStatus, 0, len(cfg.Helpdesk.ExtraStatuses))
	for _, s := range cfg.Helpdesk.ExtraStatuses {
		extras = append(extras, ticketvo.ExtraStatus{Name: s.Name, Label: s.Label})
	}
	machine, err := ticketvo.NewStatusMachine(extras)
	if err != nil {
		return fmt.Errorf("invalid helpdesk.extra_statuses: %w", err)
	}
	c.machine = machine

	c.forms = forms.NewRegistry(cfg.Helpdesk.DefaultPriority)
	if err := c.forms.Validate(cfg.Helpdesk.PublicTicketForm, cfg.Helpdesk.StaffTicketForm); err != nil {
		return fmt.Errorf("invalid helpdesk ticket form: %w", err)
	}

	templates := template.NewMailTemplates(cfg.Email.TemplatesDir, c.log.Named("mail_templates"))
	if err := templates.Load(); err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	c.mailer = email.NewSMTPMailer(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress(),
		FromName:    cfg.Email.FromName,
		BaseURL:     cfg.Server.BaseURL,
	}, templates, c.renderer, c.log.Named("smtp"))

	files, err := storage.NewFilesystemStore(cfg.Attachments.Dir)
	if err != nil {
		return fmt.Errorf("failed to prepare attachment storage: %w", err)
	}
	c.files = files

	c.mailboxes = mailbox.NewClient(mailbox.OptionsFromConfig(cfg.Mailbox), c.log.Named("mailbox"))
	c.parser = mailbox.NewParser()

	window := time.Duration(cfg.Auth.RateLimit.WindowSeconds) * time.Second
	c.loginLimiter = middleware.NewRateLimiter(c.limiter, "login", cfg.Auth.RateLimit.LoginAttempts, window, c.log)

	return nil
}

func (c *Container) initScheduler() error {
	c.schedulerManager = scheduler.NewSchedulerManager(c.log.Named("scheduler"))

	if c.cfg.Mailbox.PollSpec != "" {
		if err := c.schedulerManager.RegisterMailboxJob(c.ucs.pollMailboxesUC, c.cfg.Mailbox.PollSpec); err != nil {
			return fmt.Errorf("failed to register mailbox job: %w", err)
		}
	}
	if c.cfg.Escalation.Enabled {
		if err := c.schedulerManager.RegisterEscalationJob(c.ucs.escalateUC, c.cfg.Escalation.Spec); err != nil {
			return fmt.Errorf("failed to register escalation job: %w", err)
		}
	}
	return nil
}

// Engine returns the gin engine after SetupRoutes has been called.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// StartScheduler starts the cron jobs. The CLI one-shot commands never call it.
func (c *Container) StartScheduler() {
	c.schedulerManager.Start()
}

// Shutdown stops the scheduler and waits for running jobs, then releases
// Redis. The HTTP server is shut down by the caller afterwards.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.schedulerManager.Stop(ctx); err != nil {
		c.log.Warnw("scheduler did not stop cleanly", "error", err)
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
