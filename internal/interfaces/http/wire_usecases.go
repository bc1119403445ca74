package http

import (
	"fmt"
	"time"

	kbUsecases "github.com/openhelpdesk/helpdesk/internal/application/kb/usecases"
	permissionApp "github.com/openhelpdesk/helpdesk/internal/application/permission"
	queueUsecases "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	ticketUsecases "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	userUsecases "github.com/openhelpdesk/helpdesk/internal/application/user/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// User / Auth
	loginUC         *userUsecases.LoginUseCase
	rememberAuthUC  *userUsecases.RememberAuthUseCase
	logoutUC        *userUsecases.LogoutUseCase
	accountUC       *userUsecases.AccountUseCase
	settingsUC      *userUsecases.SettingsUseCase
	requestResetUC  *userUsecases.RequestPasswordResetUseCase
	confirmResetUC  *userUsecases.ConfirmPasswordResetUseCase
	queuePermission *permissionApp.Service

	// Ticket
	submitTicketUC    *ticketUsecases.SubmitTicketUseCase
	getTicketUC       *ticketUsecases.GetTicketUseCase
	listTicketsUC     *ticketUsecases.ListTicketsUseCase
	listUserTicketsUC *ticketUsecases.ListUserTicketsUseCase
	updateTicketUC    *ticketUsecases.UpdateTicketUseCase
	editTicketUC      *ticketUsecases.EditTicketUseCase
	holdTicketUC      *ticketUsecases.HoldTicketUseCase
	deleteTicketUC    *ticketUsecases.DeleteTicketUseCase
	mergeTicketsUC    *ticketUsecases.MergeTicketsUseCase
	massUpdateUC      *ticketUsecases.MassUpdateUseCase
	manageCCUC        *ticketUsecases.ManageCCUseCase
	followUpUC        *ticketUsecases.FollowUpUseCase
	attachmentUC      *ticketUsecases.AttachmentUseCase
	publicViewUC      *ticketUsecases.PublicViewUseCase
	slaUC             *ticketUsecases.SLAUseCase
	dashboardUC       *ticketUsecases.DashboardUseCase
	escalateUC        *ticketUsecases.EscalateTicketsUseCase

	// Queue
	manageQueueUC   *queueUsecases.ManageQueueUseCase
	testMailboxUC   *queueUsecases.TestMailboxUseCase
	pollMailboxesUC *queueUsecases.PollMailboxesUseCase

	// Knowledge base
	kbBrowseUC *kbUsecases.BrowseUseCase
	kbManageUC *kbUsecases.ManageUseCase
	kbImportUC *kbUsecases.ImportUseCase
}

func (c *Container) initUseCases() error {
	cfg := c.cfg
	r := c.repos
	log := c.log
	ucs := &allUseCases{}

	// User / Auth
	ucs.loginUC = userUsecases.NewLoginUseCase(r.userRepo, r.rememberRepo, c.hasher, c.jwtSvc, log)
	ucs.rememberAuthUC = userUsecases.NewRememberAuthUseCase(r.userRepo, r.rememberRepo, c.jwtSvc, log)
	ucs.logoutUC = userUsecases.NewLogoutUseCase(r.rememberRepo, log)
	ucs.accountUC = userUsecases.NewAccountUseCase(r.userRepo, c.hasher, c.policy, cfg.Auth.Password, log)
	ucs.settingsUC = userUsecases.NewSettingsUseCase(r.settingsRepo, c.policy, log)
	ucs.requestResetUC = userUsecases.NewRequestPasswordResetUseCase(
		r.userRepo, r.resetTokenRepo, c.mailer, c.limiter, cfg.Auth, cfg.Server.BaseURL, log,
	)
	ucs.confirmResetUC = userUsecases.NewConfirmPasswordResetUseCase(
		r.userRepo, r.resetTokenRepo, r.rememberRepo, c.hasher, c.txMgr, cfg.Auth.Password, log,
	)
	ucs.queuePermission = permissionApp.NewService(r.userRepo, r.queueRepo, c.enforcer, c.policy, log)

	// Ticket
	notifier := ticketUsecases.NewNotifier(
		c.mailer,
		r.userRepo,
		r.settingsRepo,
		cfg.Email.FromAddress(),
		time.Duration(cfg.Email.SendTimeoutSecs)*time.Second,
		c.metrics,
		log.Named("notifier"),
	)
	deps := ticketUsecases.PipelineDeps{
		Tickets:     r.ticketRepo,
		FollowUps:   r.followUpRepo,
		Attachments: r.attachmentRepo,
		CCs:         r.ccRepo,
		Queues:      r.queueRepo,
		Users:       r.userRepo,
		TxMgr:       c.txMgr,
		Machine:     c.machine,
		Policy:      c.policy,
		Validator:   ticketUsecases.NewAttachmentValidator(cfg.Attachments),
		Files:       c.files,
		Notifier:    notifier,
		Metrics:     c.metrics,
	}

	publicForm, err := c.forms.Get(cfg.Helpdesk.PublicTicketForm)
	if err != nil {
		return fmt.Errorf("public ticket form: %w", err)
	}
	staffForm, err := c.forms.Get(cfg.Helpdesk.StaffTicketForm)
	if err != nil {
		return fmt.Errorf("staff ticket form: %w", err)
	}

	ucs.updateTicketUC = ticketUsecases.NewUpdateTicketUseCase(deps, log)
	ucs.submitTicketUC = ticketUsecases.NewSubmitTicketUseCase(deps, r.kbItemRepo, r.settingsRepo, publicForm, staffForm, log)
	ucs.getTicketUC = ticketUsecases.NewGetTicketUseCase(deps, c.renderer, log)
	ucs.listTicketsUC = ticketUsecases.NewListTicketsUseCase(deps, log)
	ucs.listUserTicketsUC = ticketUsecases.NewListUserTicketsUseCase(deps, log)
	ucs.editTicketUC = ticketUsecases.NewEditTicketUseCase(c.policy, ucs.updateTicketUC, log)
	ucs.holdTicketUC = ticketUsecases.NewHoldTicketUseCase(c.policy, ucs.updateTicketUC, log)
	ucs.deleteTicketUC = ticketUsecases.NewDeleteTicketUseCase(deps, log)
	ucs.mergeTicketsUC = ticketUsecases.NewMergeTicketsUseCase(deps, log)
	ucs.massUpdateUC = ticketUsecases.NewMassUpdateUseCase(c.policy, ucs.updateTicketUC, ucs.deleteTicketUC, log)
	ucs.manageCCUC = ticketUsecases.NewManageCCUseCase(deps, log)
	ucs.followUpUC = ticketUsecases.NewFollowUpUseCase(deps, log)
	ucs.attachmentUC = ticketUsecases.NewAttachmentUseCase(deps, log)
	ucs.publicViewUC = ticketUsecases.NewPublicViewUseCase(
		deps, c.renderer, ucs.updateTicketUC, cfg.Helpdesk.SubmitterAcceptResolutionComment, log,
	)
	ucs.slaUC = ticketUsecases.NewSLAUseCase(deps, log)
	ucs.dashboardUC = ticketUsecases.NewDashboardUseCase(deps, r.kbItemRepo, log)
	ucs.escalateUC = ticketUsecases.NewEscalateTicketsUseCase(deps, log)

	// Queue
	ucs.manageQueueUC = queueUsecases.NewManageQueueUseCase(r.queueRepo, c.policy, log)
	ucs.testMailboxUC = queueUsecases.NewTestMailboxUseCase(r.queueRepo, c.mailboxes, c.policy, log)
	ucs.pollMailboxesUC = queueUsecases.NewPollMailboxesUseCase(
		r.queueRepo, r.ticketRepo, c.mailboxes, c.parser, ucs.submitTicketUC, ucs.updateTicketUC, log.Named("poller"),
	).WithMetrics(c.metrics)

	// Knowledge base
	ucs.kbBrowseUC = kbUsecases.NewBrowseUseCase(r.kbCategoryRepo, r.kbItemRepo, c.txMgr, c.policy, c.renderer, log)
	ucs.kbManageUC = kbUsecases.NewManageUseCase(r.kbCategoryRepo, r.kbItemRepo, r.queueRepo, c.policy, log)
	ucs.kbImportUC = kbUsecases.NewImportUseCase(r.kbCategoryRepo, r.kbItemRepo, c.txMgr, log)

	c.ucs = ucs
	return nil
}

// PollMailboxes is the use case behind the mailbox job, for the CLI.
func (c *Container) PollMailboxes() *queueUsecases.PollMailboxesUseCase {
	return c.ucs.pollMailboxesUC
}

func (c *Container) TestMailbox() *queueUsecases.TestMailboxUseCase {
	return c.ucs.testMailboxUC
}

func (c *Container) Escalate() *ticketUsecases.EscalateTicketsUseCase {
	return c.ucs.escalateUC
}

func (c *Container) Accounts() *userUsecases.AccountUseCase {
	return c.ucs.accountUC
}

func (c *Container) ImportKB() *kbUsecases.ImportUseCase {
	return c.ucs.kbImportUC
}
