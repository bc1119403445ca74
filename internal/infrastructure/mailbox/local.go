package mailbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	queueuc "github.com/openhelpdesk/helpdesk/internal/application/queue/usecases"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
)

func testLocal(cfg qvo.MailboxConfig) error {
	info, err := os.Stat(cfg.LocalDir)
	if err != nil {
		return fmt.Errorf("local mailbox: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local mailbox %s is not a directory", cfg.LocalDir)
	}
	return nil
}

// fetchLocal reads every regular file in the directory in name order and
// removes it once handled.
func (c *Client) fetchLocal(ctx context.Context, cfg qvo.MailboxConfig, handle queueuc.MessageHandler) error {
	entries, err := os.ReadDir(cfg.LocalDir)
	if err != nil {
		return fmt.Errorf("local mailbox: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(cfg.LocalDir, entry.Name())
		if err := c.handleFile(ctx, path, handle); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) handleFile(ctx context.Context, path string, handle queueuc.MessageHandler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := handle(ctx, f); err != nil {
		return fmt.Errorf("handler failed for %s: %w", filepath.Base(path), err)
	}
	return nil
}
