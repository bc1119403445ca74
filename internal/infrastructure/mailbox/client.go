package mailbox

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	sharedConfig "github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

var _ queueuc.MailboxClient = (*Client)(nil)

const defaultDialTimeout = 10 * time.Second

// Options configures every connector the client dispatches to.
type Options struct {
	DialTimeout      time.Duration
	DeleteAfterFetch bool
	OAuth            OAuthOptions
}

// OAuthOptions is the client-credentials grant used by oauth mailboxes.
type OAuthOptions struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func (o OAuthOptions) configured() bool {
	return o.TokenURL != "" && o.ClientID != ""
}

func OptionsFromConfig(cfg sharedConfig.MailboxConfig) Options {
	return Options{
		DialTimeout:      time.Duration(cfg.DialTimeoutSecs) * time.Second,
		DeleteAfterFetch: cfg.DeleteAfterFetch,
		OAuth: OAuthOptions{
			TokenURL:     cfg.OAuthTokenURL,
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Scopes:       cfg.OAuthScopes,
		},
	}
}

// Client picks the connector for a queue's mailbox type.
type Client struct {
	opts    Options
	logger  logger.Interface
	newIMAP func(cfg qvo.MailboxConfig) (imapClient, error)
	newPOP3 func(cfg qvo.MailboxConfig) (pop3Connection, error)
	token   func(ctx context.Context) (string, error)
}

func NewClient(opts Options, log logger.Interface) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	c := &Client{
		opts:   opts,
		logger: log,
	}
	c.newIMAP = c.dialIMAP
	c.newPOP3 = c.dialPOP3
	c.token = c.fetchToken
	return c
}

func (c *Client) Test(ctx context.Context, cfg qvo.MailboxConfig) error {
	switch cfg.Type {
	case qvo.MailboxIMAP, qvo.MailboxOAuth:
		return c.testIMAP(ctx, cfg)
	case qvo.MailboxPOP3:
		return c.testPOP3(cfg)
	case qvo.MailboxLocal:
		return testLocal(cfg)
	default:
		return fmt.Errorf("unsupported mailbox type %q", cfg.Type)
	}
}

// Fetch hands every waiting message to handle. A message is deleted only
// after handle accepted it and only when delete-after-fetch is enabled.
// Local directories are always drained.
func (c *Client) Fetch(ctx context.Context, cfg qvo.MailboxConfig, handle queueuc.MessageHandler) error {
	if handle == nil {
		return fmt.Errorf("mailbox fetch requires a handler")
	}
	switch cfg.Type {
	case qvo.MailboxIMAP, qvo.MailboxOAuth:
		return c.fetchIMAP(ctx, cfg, handle)
	case qvo.MailboxPOP3:
		return c.fetchPOP3(ctx, cfg, handle)
	case qvo.MailboxLocal:
		return c.fetchLocal(ctx, cfg, handle)
	default:
		return fmt.Errorf("unsupported mailbox type %q", cfg.Type)
	}
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	if !c.opts.OAuth.configured() {
		return "", fmt.Errorf("oauth mailbox requires mailbox.oauth_token_url and mailbox.oauth_client_id")
	}
	cc := &clientcredentials.Config{
		ClientID:     c.opts.OAuth.ClientID,
		ClientSecret: c.opts.OAuth.ClientSecret,
		TokenURL:     c.opts.OAuth.TokenURL,
		Scopes:       c.opts.OAuth.Scopes,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain oauth token: %w", err)
	}
	return tok.AccessToken, nil
}
