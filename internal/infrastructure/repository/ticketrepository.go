package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/mappers"
	"github.com/openhelpdesk/helpdesk/internal/infrastructure/persistence/models"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

// ticketSortColumns maps the sort keys accepted from callers to columns.
// Anything else falls back to created_at.
var ticketSortColumns = map[string]string{
	"id":          "id",
	"created":     "created_at",
	"updated":     "updated_at",
	"title":       "title",
	"status":      "status",
	"priority":    "priority",
	"queue":       "queue_id",
	"assigned_to": "assigned_to",
	"due_date":    "due_date",
}

// ticketFieldColumns maps the aggregate's dirty fields to the columns
// Update writes.
var ticketFieldColumns = map[string]string{
	ticket.FieldStatus:         "status",
	ticket.FieldTitle:          "title",
	ticket.FieldDescription:    "description",
	ticket.FieldPriority:       "priority",
	ticket.FieldOwner:          "assigned_to",
	ticket.FieldDueDate:        "due_date",
	ticket.FieldSubmitterEmail: "submitter_email",
	ticket.FieldOnHold:         "on_hold",
	ticket.FieldMergedTo:       "merged_to",
	ticket.FieldResolution:     "resolution",
	ticket.FieldKBItem:         "kbitem_id",
	ticket.FieldLastEscalation: "last_escalation",
}

var allowedTicketOrderByFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"title":       true,
	"status":      true,
	"priority":    true,
	"queue_id":    true,
	"assigned_to": true,
	"due_date":    true,
}

type TicketRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{
		db:     db,
		mapper: mappers.NewTicketMapper(),
	}
}

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	t.ClearDirty()
	return t.SetID(model.ID)
}

// Update writes only the columns the aggregate changed, so a writer holding
// an older copy of the ticket never reverts fields it did not touch.
func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	columns := []string{"updated_at"}
	for _, f := range t.DirtyFields() {
		if col, ok := ticketFieldColumns[f]; ok {
			columns = append(columns, col)
		}
	}

	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	// Select also writes cleared pointers and false flags.
	result := tx.
		Model(&models.TicketModel{}).
		Where("id = ?", model.ID).
		Select(columns).
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}

	// Note: RowsAffected may be 0 when updated values are identical to existing values.

	t.ClearDirty()
	return nil
}

func (r *TicketRepository) Delete(ctx context.Context, ticketID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	followUpIDs := tx.Model(&models.FollowUpModel{}).Select("id").Where("ticket_id = ?", ticketID)

	if err := tx.Where("followup_id IN (?)", followUpIDs).Delete(&models.TicketChangeModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete ticket changes: %w", err)
	}
	if err := tx.Where("followup_id IN (?)", followUpIDs).Delete(&models.AttachmentModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete attachments: %w", err)
	}
	if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.FollowUpModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete follow-ups: %w", err)
	}
	if err := tx.Where("ticket_id = ?", ticketID).Delete(&models.CCModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete ticket ccs: %w", err)
	}
	if err := tx.Delete(&models.TicketModel{}, ticketID).Error; err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

// GetByIDForUpdate reads the ticket under a row lock held until the
// surrounding transaction ends. SQLite has no row locks and serializes
// writers instead.
func (r *TicketRepository) GetByIDForUpdate(ctx context.Context, ticketID uint) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}

	return r.mapper.ToDomain(&model)
}

func (r *TicketRepository) List(ctx context.Context, filter ticket.TicketFilter) ([]*ticket.Ticket, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.TicketModel{})

	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if len(filter.QueueIDs) > 0 {
		query = query.Where("queue_id IN ?", filter.QueueIDs)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(filter.Statuses))
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	} else if filter.Unassigned {
		query = query.Where("assigned_to IS NULL")
	}
	if filter.SubmitterEmail != "" {
		query = query.Where("LOWER(submitter_email) = ?", strings.ToLower(filter.SubmitterEmail))
	}
	if filter.Keyword != "" {
		like := "%" + escapeLike(strings.ToLower(filter.Keyword)) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(submitter_email) LIKE ? ESCAPE '!'",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	column := ticketSortColumns[strings.ToLower(filter.SortBy)]
	query = db.OrderBy(column, filter.SortDesc, allowedTicketOrderByFields, "created_at")(query)
	query = db.Paginate(filter.Page, filter.PageSize)(query.Order("id"))

	var ticketModels []models.TicketModel
	if err := query.Find(&ticketModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets, err := r.toDomainList(ticketModels)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *TicketRepository) CountByStatus(ctx context.Context) (map[vo.TicketStatus]int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var rows []struct {
		Status string
		Count  int64
	}
	if err := tx.Model(&models.TicketModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count tickets by status: %w", err)
	}

	counts := make(map[vo.TicketStatus]int64, len(rows))
	for _, row := range rows {
		counts[vo.TicketStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func (r *TicketRepository) CountUnassigned(ctx context.Context, statuses []vo.TicketStatus) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.TicketModel{}).Where("assigned_to IS NULL")
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(statuses))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count unassigned tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) CountAssignedTo(ctx context.Context, userID uint, statuses []vo.TicketStatus) (int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.TicketModel{}).Where("assigned_to = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(statuses))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count assigned tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) ListByQueues(ctx context.Context, queueIDs []uint, statuses []vo.TicketStatus) ([]*ticket.Ticket, error) {
	if len(queueIDs) == 0 {
		return nil, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Where("queue_id IN ?", queueIDs)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(statuses))
	}

	var ticketModels []models.TicketModel
	if err := query.Order("id").Find(&ticketModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets by queue: %w", err)
	}
	return r.toDomainList(ticketModels)
}

func (r *TicketRepository) toDomainList(ticketModels []models.TicketModel) ([]*ticket.Ticket, error) {
	tickets := make([]*ticket.Ticket, 0, len(ticketModels))
	for i := range ticketModels {
		t, err := r.mapper.ToDomain(&ticketModels[i])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func statusStrings(statuses []vo.TicketStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
