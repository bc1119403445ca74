package usecases

import (
	"context"
	"strconv"
	"strings"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/domain/ticket"
	vo "github.com/openhelpdesk/helpdesk/internal/domain/ticket/valueobjects"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
	"github.com/openhelpdesk/helpdesk/internal/shared/services/markdown"
)

const invalidTicketLookup = "Invalid ticket ID or e-mail address. Please try again."

type PublicViewQuery struct {
	// TicketRef is "<id>" or "<queue-slug>-<id>".
	TicketRef string
	Email     string
	Key       string
	// Actor is the logged-in user, if any.
	Actor access.Actor
	// Close accepts the resolution when the ticket is resolved.
	Close bool
}

type PublicViewResult struct {
	View     *TicketView
	Closed   bool
	Warnings []string
}

// PublicViewUseCase serves the submitter's view of a ticket identified by
// id, email and secret key.
type PublicViewUseCase struct {
	loader        ticketLoader
	followUps     ticket.FollowUpRepository
	machine       *vo.StatusMachine
	policy        *access.Policy
	renderer      markdown.Renderer
	update        *UpdateTicketUseCase
	acceptComment string
	logger        logger.Interface
}

func NewPublicViewUseCase(
	deps PipelineDeps,
	renderer markdown.Renderer,
	update *UpdateTicketUseCase,
	acceptComment string,
	logger logger.Interface,
) *PublicViewUseCase {
	if acceptComment == "" {
		acceptComment = "Submitter accepted resolution and closed ticket"
	}
	return &PublicViewUseCase{
		loader:        deps.loader(logger),
		followUps:     deps.FollowUps,
		machine:       deps.Machine,
		policy:        deps.Policy,
		renderer:      renderer,
		update:        update,
		acceptComment: acceptComment,
		logger:        logger,
	}
}

func (uc *PublicViewUseCase) Execute(ctx context.Context, query PublicViewQuery) (*PublicViewResult, error) {
	uc.logger.Infow("executing public view use case", "ticket", query.TicketRef, "close", query.Close)

	email := strings.TrimSpace(query.Email)
	if strings.TrimSpace(query.TicketRef) == "" || email == "" {
		return nil, errors.NewValidationError("Missing ticket ID or e-mail address. Please try again.")
	}
	slug, ticketID, ok := ParseTicketRef(query.TicketRef)
	if !ok {
		return nil, errors.NewNotFoundError(invalidTicketLookup)
	}

	lt, err := uc.loader.load(ctx, ticketID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewNotFoundError(invalidTicketLookup)
		}
		return nil, err
	}
	if slug != "" && !strings.EqualFold(slug, lt.queue.Slug()) {
		return nil, errors.NewNotFoundError(invalidTicketLookup)
	}

	actor := uc.lookupActor(query, email)
	if !lt.ticket.SubmitterMatches(email) {
		return nil, errors.NewNotFoundError(invalidTicketLookup)
	}
	level := uc.policy.TicketLevel(actor, lt.ticket, lt.queue, lt.ccs)
	if level < access.LevelRead {
		uc.logger.Warnw("public ticket lookup rejected", "ticket_id", ticketID)
		return nil, errors.NewNotFoundError(invalidTicketLookup)
	}

	result := &PublicViewResult{}
	if query.Close && lt.ticket.Status() == vo.StatusResolved {
		res, err := uc.update.Execute(ctx, UpdateTicketCommand{
			TicketID:  ticketID,
			Actor:     actor,
			Comment:   uc.acceptComment,
			Public:    true,
			NewStatus: vo.StatusClosed.String(),
		})
		if err != nil {
			return nil, err
		}
		result.Closed = true
		result.Warnings = res.Warnings
		if lt, err = uc.loader.load(ctx, ticketID); err != nil {
			return nil, err
		}
	}

	// The submitter's page never shows private follow-ups, even to staff.
	viewLevel := level
	if viewLevel > access.LevelComment {
		viewLevel = access.LevelComment
	}
	view, err := buildTicketView(ctx, uc.followUps, uc.machine, uc.renderer, uc.policy, actor, lt, viewLevel, uc.logger)
	if err != nil {
		return nil, err
	}
	result.View = view
	return result, nil
}

// lookupActor keeps a logged-in user whose account email is the one asked
// for; everyone else is anonymous with the presented key.
func (uc *PublicViewUseCase) lookupActor(query PublicViewQuery, email string) access.Actor {
	if query.Actor.IsAuthenticated() && strings.EqualFold(query.Actor.Email, email) {
		a := query.Actor
		a.SecretKey = query.Key
		return a
	}
	return access.AnonymousActor(email, query.Key)
}

// ParseTicketRef accepts "12" or "queue-slug-12".
func ParseTicketRef(ref string) (slug string, id uint, ok bool) {
	ref = strings.TrimSpace(ref)
	idPart := ref
	if i := strings.LastIndex(ref, "-"); i >= 0 {
		slug, idPart = ref[:i], ref[i+1:]
	}
	n, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || n == 0 {
		return "", 0, false
	}
	return slug, uint(n), true
}
