package usecases

import (
	"context"
	"fmt"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/ticket/dto"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	"github.com/openhelpdesk/helpdesk/internal/domain/user"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/mapper"
)

type AddCCCommand struct {
	TicketID  uint
	Actor     access.Actor
	UserID    *uint
	Email     string
	CanView   bool
	CanUpdate bool
}

// ManageCCUseCase adds, lists and removes the people copied on a ticket.
// All three are staff operations.
type ManageCCUseCase struct {
	loader ticketLoader
	ccs    ticket.CCRepository
	users  user.Repository
	policy *access.Policy
	logger logger.Interface
}

func NewManageCCUseCase(deps PipelineDeps, logger logger.Interface) *ManageCCUseCase {
	return &ManageCCUseCase{
		loader: deps.loader(logger),
		ccs:    deps.CCs,
		users:  deps.Users,
		policy: deps.Policy,
		logger: logger,
	}
}

func (uc *ManageCCUseCase) requireFull(ctx context.Context, actor access.Actor, ticketID uint) (*loadedTicket, error) {
	lt, err := uc.loader.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if uc.policy.TicketLevel(actor, lt.ticket, lt.queue, lt.ccs) != access.LevelFull {
		return nil, errors.NewForbiddenError("staff access required")
	}
	return lt, nil
}

func (uc *ManageCCUseCase) Add(ctx context.Context, cmd AddCCCommand) (*dto.CCDTO, error) {
	uc.logger.Infow("executing add cc use case", "ticket_id", cmd.TicketID, "user_id", cmd.Actor.UserID)

	lt, err := uc.requireFull(ctx, cmd.Actor, cmd.TicketID)
	if err != nil {
		return nil, err
	}
	if cmd.UserID != nil {
		u, err := uc.users.GetByID(ctx, *cmd.UserID)
		if err != nil {
			uc.logger.Errorw("failed to load cc user", "user_id", *cmd.UserID, "error", err)
			return nil, errors.NewInternalError("failed to load user")
		}
		if u == nil {
			return nil, errors.NewValidationError(fmt.Sprintf("user %d does not exist", *cmd.UserID))
		}
	}
	cc, err := ticket.NewCC(cmd.TicketID, cmd.UserID, cmd.Email, cmd.CanView, cmd.CanUpdate)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	for _, existing := range lt.ccs {
		uid := uint(0)
		if cmd.UserID != nil {
			uid = *cmd.UserID
		}
		if existing.Matches(uid, cmd.Email) {
			return nil, errors.NewConflictError("already copied on this ticket")
		}
	}
	if err := uc.ccs.Create(ctx, cc); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError("already copied on this ticket")
		}
		uc.logger.Errorw("failed to create cc", "ticket_id", cmd.TicketID, "error", err)
		return nil, errors.NewInternalError("failed to add CC")
	}

	uc.logger.Infow("cc added successfully", "ticket_id", cmd.TicketID, "cc_id", cc.ID())
	d := dto.ToCCDTO(cc)
	return &d, nil
}

func (uc *ManageCCUseCase) List(ctx context.Context, actor access.Actor, ticketID uint) ([]dto.CCDTO, error) {
	uc.logger.Infow("executing list cc use case", "ticket_id", ticketID)

	lt, err := uc.requireFull(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	out := mapper.MapSlice(lt.ccs, dto.ToCCDTO)
	if out == nil {
		out = []dto.CCDTO{}
	}
	return out, nil
}

func (uc *ManageCCUseCase) Delete(ctx context.Context, actor access.Actor, ticketID, ccID uint) error {
	uc.logger.Infow("executing delete cc use case", "ticket_id", ticketID, "cc_id", ccID)

	if _, err := uc.requireFull(ctx, actor, ticketID); err != nil {
		return err
	}
	cc, err := uc.ccs.GetByID(ctx, ccID)
	if err != nil {
		uc.logger.Errorw("failed to get cc", "cc_id", ccID, "error", err)
		return errors.NewInternalError("failed to load CC")
	}
	if cc == nil || cc.TicketID() != ticketID {
		return errors.NewNotFoundError(fmt.Sprintf("cc %d not found", ccID))
	}
	if err := uc.ccs.Delete(ctx, ccID); err != nil {
		uc.logger.Errorw("failed to delete cc", "cc_id", ccID, "error", err)
		return errors.NewInternalError("failed to delete CC")
	}
	return nil
}
