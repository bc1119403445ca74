package usecases

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/shared/db"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

type EditFollowUpCommand struct {
	FollowUpID uint
	Actor      access.Actor
	Title      string
	Comment    string
	Public     bool
	TimeSpent  time.Duration
}

// FollowUpUseCase edits, deletes and lists follow-ups. Edits and deletes
// are staff only; the audit rows of an edited follow-up are kept.
type FollowUpUseCase struct {
	loader      ticketLoader
	followUps   ticket.FollowUpRepository
	attachments ticket.AttachmentRepository
	txMgr       db.TxRunner
	policy      *access.Policy
	files       FileStore
	logger      logger.Interface
}

func NewFollowUpUseCase(deps PipelineDeps, logger logger.Interface) *FollowUpUseCase {
	return &FollowUpUseCase{
		loader:      deps.loader(logger),
		followUps:   deps.FollowUps,
		attachments: deps.Attachments,
		txMgr:       deps.TxMgr,
		policy:      deps.Policy,
		files:       deps.Files,
		logger:      logger,
	}
}

// loadForStaff returns the follow-up after checking full access to its ticket.
func (uc *FollowUpUseCase) loadForStaff(ctx context.Context, actor access.Actor, followUpID uint) (*ticket.FollowUp, error) {
	if err := uc.policy.RequireStaff(actor); err != nil {
		return nil, err
	}
	f, err := uc.followUps.GetByID(ctx, followUpID)
	if err != nil {
		uc.logger.Errorw("failed to get follow-up", "followup_id", followUpID, "error", err)
		return nil, errors.NewInternalError("failed to load follow-up")
	}
	if f == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("follow-up %d not found", followUpID))
	}
	lt, err := uc.loader.load(ctx, f.TicketID())
	if err != nil {
		return nil, err
	}
	if uc.policy.TicketLevel(actor, lt.ticket, lt.queue, lt.ccs) != access.LevelFull {
		return nil, errors.NewForbiddenError("you may not modify this follow-up")
	}
	return f, nil
}

func (uc *FollowUpUseCase) Get(ctx context.Context, actor access.Actor, followUpID uint) (*dto.FollowUpDTO, error) {
	uc.logger.Infow("executing get follow-up use case", "followup_id", followUpID)

	f, err := uc.loadForStaff(ctx, actor, followUpID)
	if err != nil {
		return nil, err
	}
	d := dto.ToFollowUpDTO(f)
	return &d, nil
}

func (uc *FollowUpUseCase) Edit(ctx context.Context, cmd EditFollowUpCommand) (*dto.FollowUpDTO, error) {
	uc.logger.Infow("executing edit follow-up use case", "followup_id", cmd.FollowUpID, "user_id", cmd.Actor.UserID)

	f, err := uc.loadForStaff(ctx, cmd.Actor, cmd.FollowUpID)
	if err != nil {
		return nil, err
	}
	if err := f.Edit(cmd.Title, cmd.Comment, cmd.Public, cmd.TimeSpent); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.followUps.Update(ctx, f); err != nil {
		uc.logger.Errorw("failed to update follow-up", "followup_id", f.ID(), "error", err)
		return nil, errors.NewInternalError("failed to update follow-up")
	}

	uc.logger.Infow("follow-up edited successfully", "followup_id", f.ID(), "ticket_id", f.TicketID())
	d := dto.ToFollowUpDTO(f)
	return &d, nil
}

// Delete removes the follow-up, its changes and attachment rows, then the
// attachment files once the rows are gone.
func (uc *FollowUpUseCase) Delete(ctx context.Context, actor access.Actor, followUpID uint) error {
	uc.logger.Infow("executing delete follow-up use case", "followup_id", followUpID, "user_id", actor.UserID)

	f, err := uc.loadForStaff(ctx, actor, followUpID)
	if err != nil {
		return err
	}
	var paths []string
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		atts, err := uc.attachments.ListByFollowUp(txCtx, f.ID())
		if err != nil {
			return err
		}
		for _, a := range atts {
			paths = append(paths, a.Path())
		}
		return uc.followUps.Delete(txCtx, f.ID())
	})
	if err != nil {
		uc.logger.Errorw("failed to delete follow-up", "followup_id", followUpID, "error", err)
		return errors.NewInternalError("failed to delete follow-up")
	}
	removeFiles(uc.files, paths, uc.logger)

	uc.logger.Infow("follow-up deleted successfully", "followup_id", followUpID, "attachments", len(paths))
	return nil
}

type ListFollowUpsResult struct {
	FollowUps []dto.FollowUpDTO
	Total     int64
	Page      int
	PageSize  int
}

// List pages through every follow-up; admin API only.
func (uc *FollowUpUseCase) List(ctx context.Context, actor access.Actor, page, pageSize int) (*ListFollowUpsResult, error) {
	uc.logger.Infow("executing list follow-ups use case", "page", page)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	normalizePage(&page, &pageSize)
	fs, total, err := uc.followUps.List(ctx, page, pageSize)
	if err != nil {
		uc.logger.Errorw("failed to list follow-ups", "error", err)
		return nil, errors.NewInternalError("failed to list follow-ups")
	}
	out := dto.ToFollowUpDTOs(fs)
	if out == nil {
		out = []dto.FollowUpDTO{}
	}
	return &ListFollowUpsResult{FollowUps: out, Total: total, Page: page, PageSize: pageSize}, nil
}

// AttachmentUseCase serves the attachment admin API and downloads.
type AttachmentUseCase struct {
	loader      ticketLoader
	followUps   ticket.FollowUpRepository
	attachments ticket.AttachmentRepository
	policy      *access.Policy
	validator   *AttachmentValidator
	files       FileStore
	logger      logger.Interface
}

func NewAttachmentUseCase(deps PipelineDeps, logger logger.Interface) *AttachmentUseCase {
	return &AttachmentUseCase{
		loader:      deps.loader(logger),
		followUps:   deps.FollowUps,
		attachments: deps.Attachments,
		policy:      deps.Policy,
		validator:   deps.Validator,
		files:       deps.Files,
		logger:      logger,
	}
}

type ListAttachmentsResult struct {
	Attachments []dto.AttachmentDTO
	Total       int64
	Page        int
	PageSize    int
}

func (uc *AttachmentUseCase) List(ctx context.Context, actor access.Actor, page, pageSize int) (*ListAttachmentsResult, error) {
	uc.logger.Infow("executing list attachments use case", "page", page)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	normalizePage(&page, &pageSize)
	as, total, err := uc.attachments.List(ctx, page, pageSize)
	if err != nil {
		uc.logger.Errorw("failed to list attachments", "error", err)
		return nil, errors.NewInternalError("failed to list attachments")
	}
	out := make([]dto.AttachmentDTO, 0, len(as))
	for _, a := range as {
		out = append(out, dto.ToAttachmentDTO(a))
	}
	return &ListAttachmentsResult{Attachments: out, Total: total, Page: page, PageSize: pageSize}, nil
}

// Create adds a file to an existing follow-up.
func (uc *AttachmentUseCase) Create(ctx context.Context, actor access.Actor, followUpID uint, upload AttachmentUpload) (*dto.AttachmentDTO, error) {
	uc.logger.Infow("executing create attachment use case", "followup_id", followUpID, "filename", upload.Filename)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return nil, err
	}
	valid, err := uc.validator.Validate([]AttachmentUpload{upload})
	if err != nil {
		return nil, err
	}
	f, err := uc.followUps.GetByID(ctx, followUpID)
	if err != nil {
		uc.logger.Errorw("failed to get follow-up", "followup_id", followUpID, "error", err)
		return nil, errors.NewInternalError("failed to load follow-up")
	}
	if f == nil {
		return nil, errors.NewValidationError(fmt.Sprintf("follow-up %d does not exist", followUpID))
	}
	lt, err := uc.loader.load(ctx, f.TicketID())
	if err != nil {
		return nil, err
	}

	u := valid[0]
	path, err := uc.files.Save(ctx, attachmentDir(lt.ticket, lt.queue.Slug()), u.filename, u.content)
	if err != nil {
		uc.logger.Errorw("failed to store attachment", "followup_id", followUpID, "error", err)
		return nil, errors.NewInternalError("failed to store attachment")
	}
	a, err := ticket.NewAttachment(u.filename, u.mimeType, int64(len(u.content)), path)
	if err != nil {
		removeFiles(uc.files, []string{path}, uc.logger)
		return nil, errors.NewValidationError(err.Error())
	}
	a.AttachTo(f.ID())
	if err := uc.attachments.Create(ctx, a); err != nil {
		removeFiles(uc.files, []string{path}, uc.logger)
		uc.logger.Errorw("failed to create attachment", "followup_id", followUpID, "error", err)
		return nil, errors.NewInternalError("failed to create attachment")
	}
	d := dto.ToAttachmentDTO(a)
	return &d, nil
}

func (uc *AttachmentUseCase) Delete(ctx context.Context, actor access.Actor, attachmentID uint) error {
	uc.logger.Infow("executing delete attachment use case", "attachment_id", attachmentID)

	if err := uc.policy.RequireSuperuser(actor); err != nil {
		return err
	}
	a, err := uc.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		uc.logger.Errorw("failed to get attachment", "attachment_id", attachmentID, "error", err)
		return errors.NewInternalError("failed to load attachment")
	}
	if a == nil {
		return errors.NewNotFoundError(fmt.Sprintf("attachment %d not found", attachmentID))
	}
	if err := uc.attachments.Delete(ctx, attachmentID); err != nil {
		uc.logger.Errorw("failed to delete attachment", "attachment_id", attachmentID, "error", err)
		return errors.NewInternalError("failed to delete attachment")
	}
	removeFiles(uc.files, []string{a.Path()}, uc.logger)
	return nil
}

type AttachmentDownload struct {
	Filename string
	MimeType string
	Size     int64
	Content  io.ReadCloser
}

// Open returns the file if actor may view the ticket and, for non-staff,
// the follow-up is public.
func (uc *AttachmentUseCase) Open(ctx context.Context, actor access.Actor, attachmentID uint) (*AttachmentDownload, error) {
	uc.logger.Infow("executing open attachment use case", "attachment_id", attachmentID)

	a, err := uc.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		uc.logger.Errorw("failed to get attachment", "attachment_id", attachmentID, "error", err)
		return nil, errors.NewInternalError("failed to load attachment")
	}
	if a == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("attachment %d not found", attachmentID))
	}
	f, err := uc.followUps.GetByID(ctx, a.FollowUpID())
	if err != nil || f == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("attachment %d not found", attachmentID))
	}
	lt, err := uc.loader.load(ctx, f.TicketID())
	if err != nil {
		return nil, err
	}
	level := uc.policy.TicketLevel(actor, lt.ticket, lt.queue, lt.ccs)
	if level < access.LevelRead || (level != access.LevelFull && !f.IsPublic()) {
		return nil, errors.NewForbiddenError("you may not download this attachment")
	}
	rc, err := uc.files.Open(a.Path())
	if err != nil {
		uc.logger.Errorw("failed to open attachment file", "attachment_id", attachmentID, "error", err)
		return nil, errors.NewNotFoundError("attachment file is missing")
	}
	return &AttachmentDownload{Filename: a.Filename(), MimeType: a.MimeType(), Size: a.Size(), Content: rc}, nil
}

func removeFiles(store FileStore, paths []string, log logger.Interface) {
	for _, p := range paths {
		if err := store.Remove(p); err != nil {
			log.Warnw("failed to remove attachment file", "path", p, "error", err)
		}
	}
}
