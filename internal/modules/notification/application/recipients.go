package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// RecipientResolver computes who should be notified for an event. It is
// stateless and side-effect free: identical context always yields the
// identical set.
type RecipientResolver struct {
	tickets domain.TicketDirectory
	logger  zerolog.Logger
}

func NewRecipientResolver(tickets domain.TicketDirectory, logger zerolog.Logger) *RecipientResolver {
	return &RecipientResolver{
		tickets: tickets,
		logger:  logger.With().Str("component", "recipient_resolver").Logger(),
	}
}

func notifiesCreator(kind domain.Kind) bool {
	switch kind {
	case domain.KindTicketAssigned, domain.KindTicketStatusChanged,
		domain.KindTicketResolved, domain.KindCommentAdded:
		return true
	}
	return false
}

func notifiesAssignee(kind domain.Kind) bool {
	switch kind {
	case domain.KindTicketCreated, domain.KindTicketAssigned,
		domain.KindCommentAdded, domain.KindTicketDueSoon:
		return true
	}
	return false
}

// Resolve returns the deduplicated recipient set for the event. A failed
// ticket lookup is recovered by falling back to the explicitly supplied
// ids; an empty context resolves to an empty set, which makes the
// dispatcher a no-op.
func (r *RecipientResolver) Resolve(ctx context.Context, kind domain.Kind, rc domain.RecipientContext) []uuid.UUID {
	set := make(map[uuid.UUID]struct{})

	creatorID := rc.CreatorID
	assigneeID := rc.AssigneeID

	if rc.TicketID != nil {
		head, err := r.tickets.Head(ctx, *rc.TicketID)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("ticket_id", rc.TicketID.String()).
				Str("kind", string(kind)).
				Msg("ticket lookup failed, resolving from explicit context only")
		} else {
			creatorID = &head.CreatorID
			if head.AssigneeID != nil {
				assigneeID = head.AssigneeID
			}
		}
	}

	if creatorID != nil && notifiesCreator(kind) {
		set[*creatorID] = struct{}{}
	}
	if assigneeID != nil && notifiesAssignee(kind) {
		set[*assigneeID] = struct{}{}
	}

	// An explicitly supplied assignee is always notified, independent of
	// what the ticket row says. Re-assignment fires before the row is
	// guaranteed visible, so both paths are kept.
	if rc.AssigneeID != nil {
		set[*rc.AssigneeID] = struct{}{}
	}

	// Authorship exclusion wins over every add rule: nobody is told about
	// their own comment.
	if kind == domain.KindCommentAdded && rc.CommentAuthorID != nil {
		delete(set, *rc.CommentAuthorID)
	}

	recipients := make([]uuid.UUID, 0, len(set))
	for id := range set {
		recipients = append(recipients, id)
	}
	return recipients
}
