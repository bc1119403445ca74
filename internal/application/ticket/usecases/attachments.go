package usecases

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/shared/config"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

// AttachmentUpload is a file received from a form, the API or an email.
type AttachmentUpload struct {
	Filename string
	Content  []byte
}

type validUpload struct {
	filename string
	mimeType string
	content  []byte
}

// AttachmentValidator checks size, extension and sniffed content type.
type AttachmentValidator struct {
	maxBytes   int64
	extensions map[string]bool
}

func NewAttachmentValidator(cfg config.AttachmentConfig) *AttachmentValidator {
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &AttachmentValidator{maxBytes: cfg.MaxBytes, extensions: exts}
}

// Validate runs before any database work. An empty extension list allows
// every type.
func (v *AttachmentValidator) Validate(uploads []AttachmentUpload) ([]validUpload, error) {
	out := make([]validUpload, 0, len(uploads))
	for _, u := range uploads {
		name := filepath.Base(strings.TrimSpace(u.Filename))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return nil, errors.NewValidationError("attachment filename is required")
		}
		if v.maxBytes > 0 && int64(len(u.Content)) > v.maxBytes {
			return nil, errors.NewValidationError(
				fmt.Sprintf("attachment %s is too large", name),
				fmt.Sprintf("maximum size is %d bytes", v.maxBytes),
			)
		}
		ext := strings.ToLower(filepath.Ext(name))
		if len(v.extensions) > 0 && !v.extensions[ext] {
			return nil, errors.NewValidationError(fmt.Sprintf("file type %q is not allowed", ext))
		}
		mt := mimetype.Detect(u.Content)
		if len(v.extensions) > 0 && !v.contentMatches(mt) {
			return nil, errors.NewValidationError(
				fmt.Sprintf("attachment %s content does not match an allowed type", name),
				mt.String(),
			)
		}
		out = append(out, validUpload{filename: name, mimeType: mt.String(), content: u.Content})
	}
	return out, nil
}

// contentMatches accepts plain text for every extension; anything else must
// sniff to an allowed extension.
func (v *AttachmentValidator) contentMatches(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") || v.extensions[m.Extension()] {
			return true
		}
	}
	return false
}

// attachmentWriter saves blobs during a transaction and removes them again
// if the transaction fails.
type attachmentWriter struct {
	store  FileStore
	logger logger.Interface
	saved  []string
}

func newAttachmentWriter(store FileStore, logger logger.Interface) *attachmentWriter {
	return &attachmentWriter{store: store, logger: logger}
}

func (w *attachmentWriter) attach(ctx context.Context, f *ticket.FollowUp, dir string, uploads []validUpload) error {
	for _, u := range uploads {
		path, err := w.store.Save(ctx, dir, u.filename, u.content)
		if err != nil {
			return fmt.Errorf("failed to store attachment %s: %w", u.filename, err)
		}
		w.saved = append(w.saved, path)
		a, err := ticket.NewAttachment(u.filename, u.mimeType, int64(len(u.content)), path)
		if err != nil {
			return err
		}
		f.AddAttachment(a)
	}
	return nil
}

func (w *attachmentWriter) rollback() {
	for _, p := range w.saved {
		if err := w.store.Remove(p); err != nil {
			w.logger.Warnw("failed to remove orphaned attachment", "path", p, "error", err)
		}
	}
	w.saved = nil
}

func attachmentDir(t *ticket.Ticket, queueSlug string) string {
	return t.TicketForURL(queueSlug)
}
