package common

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	ticketuc "github.com/openhelpdesk/helpdesk/internal/application/ticket/usecases"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

// AttachmentField is the multipart field carrying uploaded files.
const AttachmentField = "attachment"

// maxUploadRead caps how much of a single part is read before the
// validator sees it; the validator applies the configured limit.
const maxUploadRead = 64 << 20

// IsMultipart reports whether the request body is a multipart form.
func IsMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// ReadUploads collects every file sent under AttachmentField. Non-multipart
// requests carry no uploads.
func ReadUploads(c *gin.Context) ([]ticketuc.AttachmentUpload, error) {
	if !IsMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.NewValidationError("invalid multipart form", err.Error())
	}
	headers := form.File[AttachmentField]
	uploads := make([]ticketuc.AttachmentUpload, 0, len(headers))
	for _, fh := range headers {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func readUpload(fh *multipart.FileHeader) (ticketuc.AttachmentUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return ticketuc.AttachmentUpload{}, errors.NewValidationError(fmt.Sprintf("cannot read attachment %q", fh.Filename))
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadRead+1))
	if err != nil {
		return ticketuc.AttachmentUpload{}, errors.NewValidationError(fmt.Sprintf("cannot read attachment %q", fh.Filename))
	}
	if len(content) > maxUploadRead {
		return ticketuc.AttachmentUpload{}, errors.NewValidationError(fmt.Sprintf("attachment %q is too large", fh.Filename), "attachment")
	}
	return ticketuc.AttachmentUpload{Filename: fh.Filename, Content: content}, nil
}
