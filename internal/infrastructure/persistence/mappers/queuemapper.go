package mappers

import (
	"fmt"
	"time"

	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	qvo "github.com/openhelpdesk/helpdesk/internal/domain/queue/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
)

// QueueMapper handles the conversion between Queue domain entities and persistence models.
type QueueMapper interface {
	ToModel(q *queue.Queue) *models.QueueModel
	ToDomain(model *models.QueueModel) (*queue.Queue, error)
}

type QueueMapperImpl struct{}

func NewQueueMapper() QueueMapper {
	return &QueueMapperImpl{}
}

func (m *QueueMapperImpl) ToModel(q *queue.Queue) *models.QueueModel {
	mb := q.Mailbox()
	return &models.QueueModel{
		ID:                    q.ID(),
		Title:                 q.Title(),
		Slug:                  q.Slug(),
		EmailAddress:          q.EmailAddress(),
		Locale:                q.Locale(),
		AllowPublicSubmission: q.AllowPublicSubmission(),
		AllowEmailSubmission:  q.AllowEmailSubmission(),
		EscalateDays:          q.EscalateDays(),
		NewTicketCC:           q.NewTicketCC(),
		UpdatedTicketCC:       q.UpdatedTicketCC(),
		NotifyOnEmailEvents:   q.NotifyOnEmailEvents(),
		EmailBoxType:          mb.Type.String(),
		EmailBoxHost:          mb.Host,
		EmailBoxPort:          mb.Port,
		EmailBoxSSL:           mb.SSL,
		EmailBoxUser:          mb.User,
		EmailBoxPass:          mb.Password,
		EmailBoxIMAPFolder:    mb.IMAPFolder,
		EmailBoxLocalDir:      mb.LocalDir,
		EmailBoxInterval:      mb.IntervalMinutes,
		EmailBoxLastCheck:     q.LastCheck(),
		DefaultOwnerID:        q.DefaultOwnerID(),
		DedicatedTimeSeconds:  int64(q.DedicatedTime() / time.Second),
		CreatedAt:             q.CreatedAt(),
		UpdatedAt:             q.UpdatedAt(),
	}
}

func (m *QueueMapperImpl) ToDomain(model *models.QueueModel) (*queue.Queue, error) {
	if model == nil {
		return nil, nil
	}

	q, err := queue.ReconstructQueue(queue.QueueData{
		ID: model.ID,
		Settings: queue.Settings{
			Title:                 model.Title,
			Slug:                  model.Slug,
			EmailAddress:          model.EmailAddress,
			Locale:                model.Locale,
			AllowPublicSubmission: model.AllowPublicSubmission,
			AllowEmailSubmission:  model.AllowEmailSubmission,
			EscalateDays:          model.EscalateDays,
			NewTicketCC:           model.NewTicketCC,
			UpdatedTicketCC:       model.UpdatedTicketCC,
			NotifyOnEmailEvents:   model.NotifyOnEmailEvents,
			Mailbox: qvo.MailboxConfig{
				Type:            qvo.MailboxType(model.EmailBoxType),
				Host:            model.EmailBoxHost,
				Port:            model.EmailBoxPort,
				SSL:             model.EmailBoxSSL,
				User:            model.EmailBoxUser,
				Password:        model.EmailBoxPass,
				IMAPFolder:      model.EmailBoxIMAPFolder,
				LocalDir:        model.EmailBoxLocalDir,
				IntervalMinutes: model.EmailBoxInterval,
			},
			DefaultOwnerID: model.DefaultOwnerID,
			DedicatedTime:  time.Duration(model.DedicatedTimeSeconds) * time.Second,
		},
		LastCheck: utcPtr(model.EmailBoxLastCheck),
		CreatedAt: model.CreatedAt.UTC(),
		UpdatedAt: model.UpdatedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct queue %d: %w", model.ID, err)
	}
	return q, nil
}
