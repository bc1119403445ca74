package ticket

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/shared/biztime"
)

// Attachment is a file owned by exactly one follow-up. The bytes live in
// attachment storage under path.
type Attachment struct {
	id         uint
	followUpID uint
	filename   string
	mimeType   string
	size       int64
	path       string
	createdAt  time.Time
}

func NewAttachment(filename, mimeType string, size int64, path string) (*Attachment, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("attachment filename is required")
	}
	if size < 0 {
		return nil, fmt.Errorf("attachment size cannot be negative")
	}
	if path == "" {
		return nil, fmt.Errorf("attachment path is required")
	}
	return &Attachment{
		filename:  filename,
		mimeType:  mimeType,
		size:      size,
		path:      path,
		createdAt: biztime.NowUTC(),
	}, nil
}

func ReconstructAttachment(id, followUpID uint, filename, mimeType string, size int64, path string, createdAt time.Time) *Attachment {
	return &Attachment{
		id:         id,
		followUpID: followUpID,
		filename:   filename,
		mimeType:   mimeType,
		size:       size,
		path:       path,
		createdAt:  createdAt,
	}
}

func (a *Attachment) ID() uint {
	return a.id
}

func (a *Attachment) FollowUpID() uint {
	return a.followUpID
}

func (a *Attachment) Filename() string {
	return a.filename
}

func (a *Attachment) MimeType() string {
	return a.mimeType
}

func (a *Attachment) Size() int64 {
	return a.size
}

func (a *Attachment) Path() string {
	return a.path
}

func (a *Attachment) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Attachment) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("attachment ID is already set")
	}
	a.id = id
	return nil
}

// AttachTo sets the owning follow-up for attachments created on their own.
func (a *Attachment) AttachTo(followUpID uint) {
	a.followUpID = followUpID
}
