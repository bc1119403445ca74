package mailbox

import (
	"bytes"
	"context"
	"fmt"

	"github.com/knadh/go-pop3"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
)

type pop3Connection interface {
	Auth(user, password string) error
	Quit() error
	Stat() (int, int, error)
	List(msgID int) ([]pop3.MessageID, error)
	RetrRaw(msgID int) (*bytes.Buffer, error)
	Dele(msgID ...int) error
}

func (c *Client) testPOP3(cfg qvo.MailboxConfig) error {
	conn, err := c.openPOP3(cfg)
	if err != nil {
		return err
	}
	defer c.quitPOP3(conn)

	if _, _, err := conn.Stat(); err != nil {
		return fmt.Errorf("pop3 stat: %w", err)
	}
	return nil
}

// fetchPOP3 deletes each message right after it was handled. Deletions
// take effect on QUIT, so an aborted run still commits what was consumed.
func (c *Client) fetchPOP3(ctx context.Context, cfg qvo.MailboxConfig, handle queueuc.MessageHandler) error {
	conn, err := c.openPOP3(cfg)
	if err != nil {
		return err
	}
	defer c.quitPOP3(conn)

	msgs, err := conn.List(0)
	if err != nil {
		return fmt.Errorf("pop3 list: %w", err)
	}

	for _, meta := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := conn.RetrRaw(meta.ID)
		if err != nil {
			return fmt.Errorf("pop3 retr %d: %w", meta.ID, err)
		}
		if err := handle(ctx, bytes.NewReader(payload.Bytes())); err != nil {
			return fmt.Errorf("handler failed for message %d: %w", meta.ID, err)
		}
		if c.opts.DeleteAfterFetch {
			if err := conn.Dele(meta.ID); err != nil {
				return fmt.Errorf("pop3 delete %d: %w", meta.ID, err)
			}
		}
	}
	return nil
}

func (c *Client) openPOP3(cfg qvo.MailboxConfig) (pop3Connection, error) {
	conn, err := c.newPOP3(cfg)
	if err != nil {
		return nil, fmt.Errorf("pop3 connect: %w", err)
	}
	if err := conn.Auth(cfg.User, cfg.Password); err != nil {
		c.quitPOP3(conn)
		return nil, fmt.Errorf("pop3 auth: %w", err)
	}
	return conn, nil
}

func (c *Client) quitPOP3(conn pop3Connection) {
	if err := conn.Quit(); err != nil {
		c.logger.Debugw("pop3 quit error", "error", err)
	}
}

func (c *Client) dialPOP3(cfg qvo.MailboxConfig) (pop3Connection, error) {
	client := pop3.New(pop3.Opt{
		Host:        cfg.Host,
		Port:        cfg.EffectivePort(),
		DialTimeout: c.opts.DialTimeout,
		TLSEnabled:  cfg.SSL,
	})
	return client.NewConn()
}
