package mappers

import (
	"fmt"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
)

// TicketMapper handles the conversion between Ticket domain entities and persistence models.
type TicketMapper interface {
	// ToModel converts a ticket domain entity to a persistence model.
	ToModel(t *ticket.Ticket) *models.TicketModel

	// ToDomain converts a ticket persistence model to a domain entity.
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)
}

// TicketMapperImpl is the concrete implementation of TicketMapper.
type TicketMapperImpl struct{}

// NewTicketMapper creates a new TicketMapper.
func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

// ToModel converts a ticket domain entity to a persistence model.
func (m *TicketMapperImpl) ToModel(t *ticket.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:             t.ID(),
		QueueID:        t.QueueID(),
		Title:          t.Title(),
		Description:    t.Description(),
		Status:         t.Status().String(),
		SubmitterEmail: t.SubmitterEmail(),
		AssignedTo:     t.AssignedTo(),
		Priority:       t.Priority().Int(),
		DueDate:        t.DueDate(),
		SecretKey:      t.SecretKey(),
		OnHold:         t.OnHold(),
		Resolution:     t.Resolution(),
		MergedTo:       t.MergedTo(),
		KBItemID:       t.KBItemID(),
		LastEscalation: t.LastEscalation(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

// ToDomain converts a ticket persistence model to a domain entity.
func (m *TicketMapperImpl) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	if model == nil {
		return nil, nil
	}

	t, err := ticket.ReconstructTicket(ticket.TicketData{
		ID:             model.ID,
		QueueID:        model.QueueID,
		Title:          model.Title,
		Description:    model.Description,
		Status:         vo.TicketStatus(model.Status),
		SubmitterEmail: model.SubmitterEmail,
		AssignedTo:     model.AssignedTo,
		Priority:       vo.Priority(model.Priority),
		DueDate:        utcPtr(model.DueDate),
		SecretKey:      model.SecretKey,
		OnHold:         model.OnHold,
		Resolution:     model.Resolution,
		MergedTo:       model.MergedTo,
		KBItemID:       model.KBItemID,
		LastEscalation: utcPtr(model.LastEscalation),
		CreatedAt:      model.CreatedAt.UTC(),
		UpdatedAt:      model.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ticket %d: %w", model.ID, err)
	}
	return t, nil
}

// FollowUpMapper converts follow-ups together with their changes and
// attachment rows.
type FollowUpMapper interface {
	ToModel(f *ticket.FollowUp) *models.FollowUpModel
	ChangeToModel(c *ticket.TicketChange) *models.TicketChangeModel
	AttachmentToModel(a *ticket.Attachment) *models.AttachmentModel
	ToDomain(model *models.FollowUpModel, changes []models.TicketChangeModel, attachments []models.AttachmentModel) (*ticket.FollowUp, error)
	AttachmentToDomain(model *models.AttachmentModel) *ticket.Attachment
}

type FollowUpMapperImpl struct{}

func NewFollowUpMapper() FollowUpMapper {
	return &FollowUpMapperImpl{}
}

func (m *FollowUpMapperImpl) ToModel(f *ticket.FollowUp) *models.FollowUpModel {
	return &models.FollowUpModel{
		ID:               f.ID(),
		TicketID:         f.TicketID(),
		UserID:           f.UserID(),
		Title:            f.Title(),
		Comment:          f.Comment(),
		Public:           f.IsPublic(),
		NewStatus:        f.NewStatus().String(),
		TimeSpentSeconds: int64(f.TimeSpent() / time.Second),
		Date:             f.Date(),
		LastEdited:       f.LastEdited(),
	}
}

func (m *FollowUpMapperImpl) ChangeToModel(c *ticket.TicketChange) *models.TicketChangeModel {
	return &models.TicketChangeModel{
		ID:         c.ID(),
		FollowUpID: c.FollowUpID(),
		Field:      c.Field(),
		OldValue:   c.OldValue(),
		NewValue:   c.NewValue(),
	}
}

func (m *FollowUpMapperImpl) AttachmentToModel(a *ticket.Attachment) *models.AttachmentModel {
	return &models.AttachmentModel{
		ID:         a.ID(),
		FollowUpID: a.FollowUpID(),
		Filename:   a.Filename(),
		MimeType:   a.MimeType(),
		Size:       a.Size(),
		Path:       a.Path(),
		CreatedAt:  a.CreatedAt(),
	}
}

func (m *FollowUpMapperImpl) ToDomain(
	model *models.FollowUpModel,
	changes []models.TicketChangeModel,
	attachments []models.AttachmentModel,
) (*ticket.FollowUp, error) {
	if model == nil {
		return nil, nil
	}

	domainChanges := make([]*ticket.TicketChange, 0, len(changes))
	for i := range changes {
		c := &changes[i]
		domainChanges = append(domainChanges, ticket.ReconstructTicketChange(c.ID, c.FollowUpID, c.Field, c.OldValue, c.NewValue))
	}
	domainAttachments := make([]*ticket.Attachment, 0, len(attachments))
	for i := range attachments {
		domainAttachments = append(domainAttachments, m.AttachmentToDomain(&attachments[i]))
	}

	f, err := ticket.ReconstructFollowUp(ticket.FollowUpData{
		ID:          model.ID,
		TicketID:    model.TicketID,
		UserID:      model.UserID,
		Title:       model.Title,
		Comment:     model.Comment,
		Public:      model.Public,
		NewStatus:   vo.TicketStatus(model.NewStatus),
		TimeSpent:   time.Duration(model.TimeSpentSeconds) * time.Second,
		Date:        model.Date.UTC(),
		LastEdited:  utcPtr(model.LastEdited),
		Changes:     domainChanges,
		Attachments: domainAttachments,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct follow-up %d: %w", model.ID, err)
	}
	return f, nil
}

func (m *FollowUpMapperImpl) AttachmentToDomain(model *models.AttachmentModel) *ticket.Attachment {
	return ticket.ReconstructAttachment(
		model.ID,
		model.FollowUpID,
		model.Filename,
		model.MimeType,
		model.Size,
		model.Path,
		model.CreatedAt.UTC(),
	)
}

// CCToModel converts a CC domain entity to a persistence model.
func CCToModel(c *ticket.CC) *models.CCModel {
	return &models.CCModel{
		ID:        c.ID(),
		TicketID:  c.TicketID(),
		UserID:    c.UserID(),
		Email:     c.Email(),
		CanView:   c.CanView(),
		CanUpdate: c.CanUpdate(),
	}
}

// CCToDomain converts a CC persistence model to a domain entity.
func CCToDomain(model *models.CCModel) *ticket.CC {
	return ticket.ReconstructCC(model.ID, model.TicketID, model.UserID, model.Email, model.CanView, model.CanUpdate)
}

// utcPtr normalizes driver-returned times, which sqlite hands back in local time.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
