package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Page sizes used by the REST API.
	UserTicketsPageSize = 8
	AdminAPIPageSize    = 25

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	// Context keys set by the auth middleware
	ContextKeyUserID     = "user_id"
	ContextKeyUserEmail  = "user_email"
	ContextKeyUserRole   = "user_role"
	ContextKeyRemembered = "remembered"
	ContextKeyRequestID  = "request_id"

	// Remember-me token limits
	RememberUserAgentMaxLen    = 300
	RememberUserAgentPrefixLen = 50

	// Slugs are truncated to this length when generated.
	SlugMaxLen = 50

	TableUsers               = "users"
	TableUserSettings        = "user_settings"
	TableRememberTokens      = "remember_tokens"
	TablePasswordResetTokens = "password_reset_tokens"
	TableQueues              = "queues"
	TableTickets             = "tickets"
	TableFollowUps           = "followups"
	TableTicketChanges       = "ticket_changes"
	TableAttachments         = "followup_attachments"
	TableTicketCCs           = "ticket_ccs"
	TableKBCategories        = "kb_categories"
	TableKBItems             = "kb_items"
	TableKBItemVotes         = "kb_item_votes"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgResourceNotFound    = "Resource not found"
	ErrMsgUnauthorized        = "Unauthorized access"
	ErrMsgForbidden           = "Access forbidden"
)
