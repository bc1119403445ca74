package usecases

import (
	"context"
	"strconv"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/queue"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

const (
	OwnerMe   = "me"
	OwnerNone = "none"
)

type ListTicketsQuery struct {
	Actor    access.Actor
	QueueIDs []uint
	Statuses []string
	// Owner is "me", "none" or a user ID.
	Owner    string
	Keyword  string
	Page     int
	PageSize int
	SortBy   string
	SortDesc bool
}

type ListTicketsResult struct {
	Tickets  []dto.TicketListItemDTO
	Total    int64
	Page     int
	PageSize int
}

// ListTicketsUseCase is the staff ticket list.
type ListTicketsUseCase struct {
	tickets ticket.TicketRepository
	queues  queue.Repository
	machine *vo.StatusMachine
	policy  *access.Policy
	logger  logger.Interface
}

func NewListTicketsUseCase(deps PipelineDeps, logger logger.Interface) *ListTicketsUseCase {
	return &ListTicketsUseCase{
		tickets: deps.Tickets,
		queues:  deps.Queues,
		machine: deps.Machine,
		policy:  deps.Policy,
		logger:  logger,
	}
}

func (uc *ListTicketsUseCase) Execute(ctx context.Context, query ListTicketsQuery) (*ListTicketsResult, error) {
	uc.logger.Infow("executing list tickets use case", "user_id", query.Actor.UserID, "page", query.Page)

	if err := uc.policy.RequireStaff(query.Actor); err != nil {
		return nil, err
	}

	statuses, err := parseStatuses(uc.machine, query.Statuses)
	if err != nil {
		return nil, err
	}

	filter := ticket.TicketFilter{
		Statuses: statuses,
		Keyword:  strings.TrimSpace(query.Keyword),
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDesc: query.SortDesc,
	}
	normalizePage(&filter.Page, &filter.PageSize)

	queueIDs, err := uc.accessibleQueueIDs(ctx, query.Actor, query.QueueIDs)
	if err != nil {
		return nil, err
	}
	if queueIDs != nil && len(queueIDs) == 0 {
		return &ListTicketsResult{Tickets: []dto.TicketListItemDTO{}, Page: filter.Page, PageSize: filter.PageSize}, nil
	}
	filter.QueueIDs = queueIDs

	switch owner := strings.ToLower(strings.TrimSpace(query.Owner)); owner {
	case "":
	case OwnerMe:
		id := query.Actor.UserID
		filter.AssignedTo = &id
	case OwnerNone:
		filter.Unassigned = true
	default:
		n, err := strconv.ParseUint(owner, 10, 64)
		if err != nil || n == 0 {
			return nil, errors.NewValidationError("invalid owner filter: " + query.Owner)
		}
		id := uint(n)
		filter.AssignedTo = &id
	}

	items, total, err := uc.tickets.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "error", err)
		return nil, errors.NewInternalError("failed to list tickets")
	}

	uc.logger.Infow("tickets listed successfully", "count", len(items), "total", total)

	return &ListTicketsResult{
		Tickets:  dto.ToTicketListItemDTOs(items),
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// accessibleQueueIDs narrows the requested queues to those the actor may
// see. nil means no restriction.
func (uc *ListTicketsUseCase) accessibleQueueIDs(ctx context.Context, actor access.Actor, requested []uint) ([]uint, error) {
	all, err := uc.queues.List(ctx, false)
	if err != nil {
		uc.logger.Errorw("failed to list queues", "error", err)
		return nil, errors.NewInternalError("failed to list queues")
	}
	allowed := uc.policy.AccessibleQueues(actor, all)
	if len(allowed) == len(all) && len(requested) == 0 {
		return nil, nil
	}
	allowedSet := make(map[uint]bool, len(allowed))
	for _, q := range allowed {
		allowedSet[q.ID()] = true
	}
	out := []uint{}
	if len(requested) == 0 {
		for _, q := range allowed {
			out = append(out, q.ID())
		}
		return out, nil
	}
	for _, id := range requested {
		if allowedSet[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

type ListUserTicketsQuery struct {
	Actor    access.Actor
	QueueIDs []uint
	Statuses []string
	SortDesc bool
	Page     int
}

// ListUserTicketsUseCase lists the tickets a logged-in user submitted.
type ListUserTicketsUseCase struct {
	tickets ticket.TicketRepository
	machine *vo.StatusMachine
	logger  logger.Interface
}

func NewListUserTicketsUseCase(deps PipelineDeps, logger logger.Interface) *ListUserTicketsUseCase {
	return &ListUserTicketsUseCase{
		tickets: deps.Tickets,
		machine: deps.Machine,
		logger:  logger,
	}
}

func (uc *ListUserTicketsUseCase) Execute(ctx context.Context, query ListUserTicketsQuery) (*ListTicketsResult, error) {
	uc.logger.Infow("executing list user tickets use case", "user_id", query.Actor.UserID)

	if !query.Actor.IsAuthenticated() || query.Actor.Email == "" {
		return nil, errors.NewUnauthorizedError("authentication required")
	}
	statuses, err := parseStatuses(uc.machine, query.Statuses)
	if err != nil {
		return nil, err
	}
	page := query.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	filter := ticket.TicketFilter{
		QueueIDs:       query.QueueIDs,
		Statuses:       statuses,
		SubmitterEmail: query.Actor.Email,
		Page:           page,
		PageSize:       constants.UserTicketsPageSize,
		SortBy:         "created",
		SortDesc:       query.SortDesc,
	}
	items, total, err := uc.tickets.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list user tickets", "user_id", query.Actor.UserID, "error", err)
		return nil, errors.NewInternalError("failed to list tickets")
	}
	return &ListTicketsResult{
		Tickets:  dto.ToTicketListItemDTOs(items),
		Total:    total,
		Page:     page,
		PageSize: constants.UserTicketsPageSize,
	}, nil
}

func parseStatuses(m *vo.StatusMachine, raw []string) ([]vo.TicketStatus, error) {
	var out []vo.TicketStatus
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		s, err := m.Parse(r)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		out = append(out, s)
	}
	return out, nil
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = constants.DefaultPage
	}
	if *pageSize < 1 {
		*pageSize = constants.DefaultPageSize
	}
	if *pageSize > constants.MaxPageSize {
		*pageSize = constants.MaxPageSize
	}
}
