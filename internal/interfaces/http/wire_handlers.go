package http

import (
	"context"

	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers"
	apiHandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/api"
	kbHandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/kb"
	queueHandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/queue"
	ticketHandlers "github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/ticket"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler     *handlers.HealthHandler
	authHandler       *handlers.AuthHandler
	permissionHandler *handlers.PermissionHandler
	ticketHandler     *ticketHandlers.TicketHandler
	queueHandler      *queueHandlers.Handler
	kbHandler         *kbHandlers.Handler
	apiHandler        *apiHandlers.Handler
}

func (c *Container) initHandlers() {
	ucs := c.ucs
	log := c.log

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, ucs.rememberAuthUC, c.cfg.Auth, log)

	h := &allHandlers{}

	sqlDB, err := c.db.DB()
	if err == nil {
		h.healthHandler = handlers.NewHealthHandler(sqlDB, log)
	} else {
		log.Warnw("failed to get sql.DB for health checks", "error", err)
		h.healthHandler = handlers.NewHealthHandler(unavailableDB{err: err}, log)
	}

	h.authHandler = handlers.NewAuthHandler(
		ucs.loginUC,
		ucs.logoutUC,
		ucs.accountUC,
		ucs.settingsUC,
		ucs.requestResetUC,
		ucs.confirmResetUC,
		c.cfg.Auth,
		log,
	)
	h.permissionHandler = handlers.NewPermissionHandler(ucs.queuePermission, log)

	h.ticketHandler = ticketHandlers.NewTicketHandler(ticketHandlers.UseCases{
		Submit:      ucs.submitTicketUC,
		Get:         ucs.getTicketUC,
		List:        ucs.listTicketsUC,
		Update:      ucs.updateTicketUC,
		Edit:        ucs.editTicketUC,
		Hold:        ucs.holdTicketUC,
		Delete:      ucs.deleteTicketUC,
		Merge:       ucs.mergeTicketsUC,
		MassUpdate:  ucs.massUpdateUC,
		CCs:         ucs.manageCCUC,
		FollowUps:   ucs.followUpUC,
		Attachments: ucs.attachmentUC,
		PublicView:  ucs.publicViewUC,
		SLA:         ucs.slaUC,
		Dashboard:   ucs.dashboardUC,
	}, log)

	h.queueHandler = queueHandlers.NewHandler(ucs.manageQueueUC, ucs.testMailboxUC, log)
	h.kbHandler = kbHandlers.NewHandler(ucs.kbBrowseUC, ucs.kbManageUC, log)

	h.apiHandler = apiHandlers.NewHandler(apiHandlers.UseCases{
		UserTickets: ucs.listUserTicketsUC,
		ListTickets: ucs.listTicketsUC,
		GetTicket:   ucs.getTicketUC,
		Submit:      ucs.submitTicketUC,
		Edit:        ucs.editTicketUC,
		Update:      ucs.updateTicketUC,
		Delete:      ucs.deleteTicketUC,
		FollowUps:   ucs.followUpUC,
		Attachments: ucs.attachmentUC,
		Queues:      ucs.manageQueueUC,
		Users:       ucs.accountUC,
	}, log)

	c.hdlrs = h
}

// unavailableDB reports the error from opening the pool on every ping.
type unavailableDB struct{ err error }

func (u unavailableDB) PingContext(context.Context) error { return u.err }
