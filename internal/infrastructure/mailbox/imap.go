package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-sasl"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
)

type imapClient interface {
	Login(username, password string) commandWaiter
	Authenticate(client sasl.Client) error
	Logout() commandWaiter
	Close() error
	Select(mailbox string, options *imap.SelectOptions) selectWaiter
	UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter
	Fetch(numSet imap.NumSet, options *imap.FetchOptions) fetchWaiter
	Store(numSet imap.NumSet, store *imap.StoreFlags, options *imap.StoreOptions) fetchWaiter
	UIDExpunge(uids imap.UIDSet) expungeWaiter
}

type commandWaiter interface{ Wait() error }
type selectWaiter interface {
	Wait() (*imap.SelectData, error)
}
type searchWaiter interface {
	Wait() (*imap.SearchData, error)
}
type fetchWaiter interface {
	Collect() ([]*imapclient.FetchMessageBuffer, error)
	Close() error
}
type expungeWaiter interface{ Close() error }

func (c *Client) testIMAP(ctx context.Context, cfg qvo.MailboxConfig) error {
	client, err := c.openIMAP(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.closeIMAP(client)

	if err := client.Logout().Wait(); err != nil {
		return fmt.Errorf("imap logout: %w", err)
	}
	return nil
}

func (c *Client) fetchIMAP(ctx context.Context, cfg qvo.MailboxConfig, handle queueuc.MessageHandler) error {
	client, err := c.openIMAP(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.closeIMAP(client)

	searchData, err := client.UIDSearch(&imap.SearchCriteria{}, nil).Wait()
	if err != nil {
		return fmt.Errorf("imap search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		if err := client.Logout().Wait(); err != nil {
			return fmt.Errorf("imap logout: %w", err)
		}
		return nil
	}

	// Peek keeps \Seen unset for messages that are not consumed.
	buffers, err := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{{Peek: true}},
	}).Collect()
	if err != nil {
		return fmt.Errorf("imap fetch: %w", err)
	}

	var handled []imap.UID
	var handleErr error
	for _, buf := range buffers {
		if err := ctx.Err(); err != nil {
			handleErr = err
			break
		}
		body := buf.FindBodySection(&imap.FetchItemBodySection{})
		if body == nil {
			continue
		}
		if err := handle(ctx, bytes.NewReader(body)); err != nil {
			handleErr = fmt.Errorf("handler failed for uid %d: %w", buf.UID, err)
			break
		}
		handled = append(handled, buf.UID)
	}

	if c.opts.DeleteAfterFetch && len(handled) > 0 {
		set := imap.UIDSetNum(handled...)
		store := &imap.StoreFlags{Op: imap.StoreFlagsAdd, Silent: true, Flags: []imap.Flag{imap.FlagDeleted}}
		if err := client.Store(set, store, nil).Close(); err != nil {
			return fmt.Errorf("imap store delete: %w", err)
		}
		if err := client.UIDExpunge(set).Close(); err != nil {
			return fmt.Errorf("imap expunge: %w", err)
		}
	}
	if handleErr != nil {
		return handleErr
	}

	if err := client.Logout().Wait(); err != nil {
		return fmt.Errorf("imap logout: %w", err)
	}
	return nil
}

// openIMAP connects, authenticates and selects the configured folder.
func (c *Client) openIMAP(ctx context.Context, cfg qvo.MailboxConfig) (imapClient, error) {
	client, err := c.newIMAP(cfg)
	if err != nil {
		return nil, fmt.Errorf("imap connect: %w", err)
	}

	if cfg.Type == qvo.MailboxOAuth {
		token, err := c.token(ctx)
		if err != nil {
			c.closeIMAP(client)
			return nil, err
		}
		bearer := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{Username: cfg.User, Token: token})
		if err := client.Authenticate(bearer); err != nil {
			c.closeIMAP(client)
			return nil, fmt.Errorf("imap auth: %w", err)
		}
	} else if err := client.Login(cfg.User, cfg.Password).Wait(); err != nil {
		c.closeIMAP(client)
		return nil, fmt.Errorf("imap auth: %w", err)
	}

	if _, err := client.Select(cfg.Folder(), nil).Wait(); err != nil {
		c.closeIMAP(client)
		return nil, fmt.Errorf("imap select %s: %w", cfg.Folder(), err)
	}
	return client, nil
}

func (c *Client) closeIMAP(client imapClient) {
	if err := client.Close(); err != nil {
		c.logger.Debugw("imap close error", "error", err)
	}
}

func (c *Client) dialIMAP(cfg qvo.MailboxConfig) (imapClient, error) {
	opts := &imapclient.Options{Dialer: &net.Dialer{Timeout: c.opts.DialTimeout}}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort()))

	var client *imapclient.Client
	var err error
	if cfg.SSL {
		client, err = imapclient.DialTLS(addr, opts)
	} else {
		client, err = imapclient.DialInsecure(addr, opts)
	}
	if err != nil {
		return nil, err
	}
	return &imapClientWrapper{Client: client}, nil
}

type imapClientWrapper struct{ *imapclient.Client }

func (w *imapClientWrapper) Login(username, password string) commandWaiter {
	return w.Client.Login(username, password)
}
func (w *imapClientWrapper) Logout() commandWaiter { return w.Client.Logout() }
func (w *imapClientWrapper) Select(mailbox string, options *imap.SelectOptions) selectWaiter {
	return w.Client.Select(mailbox, options)
}
func (w *imapClientWrapper) UIDSearch(criteria *imap.SearchCriteria, options *imap.SearchOptions) searchWaiter {
	return w.Client.UIDSearch(criteria, options)
}
func (w *imapClientWrapper) Fetch(numSet imap.NumSet, options *imap.FetchOptions) fetchWaiter {
	return w.Client.Fetch(numSet, options)
}
func (w *imapClientWrapper) Store(numSet imap.NumSet, store *imap.StoreFlags, options *imap.StoreOptions) fetchWaiter {
	return w.Client.Store(numSet, store, options)
}
func (w *imapClientWrapper) UIDExpunge(uids imap.UIDSet) expungeWaiter {
	return w.Client.UIDExpunge(uids)
}
