package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduticket/eduticket-api/internal/modules/notification/domain"
)

// Event is what business modules publish: a kind plus the raw context the
// resolvers need. Recipients and content are computed here, never by the
// caller.
type Event struct {
	Kind               domain.Kind
	Recipient          domain.RecipientContext
	Content            domain.TitleContext
	TicketID           *uuid.UUID
	Metadata           domain.Metadata
	Actions            []domain.Action
	EducationalContext *domain.EducationalContext
	Channels           []domain.Channel
	Priority           domain.Priority
}

// Notifier is the single entry point for producing notifications. Resolve
// recipients, resolve content, dispatch. Publishing never panics and the
// returned error is informational: callers log it and move on.
type Notifier struct {
	resolver   *RecipientResolver
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

func NewNotifier(resolver *RecipientResolver, dispatcher *Dispatcher, logger zerolog.Logger) *Notifier {
	return &Notifier{
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "notifier").Logger(),
	}
}

// Publish resolves and dispatches one event. An event that resolves to no
// recipients is dropped silently.
func (n *Notifier) Publish(ctx context.Context, evt Event) error {
	recipients := n.resolver.Resolve(ctx, evt.Kind, evt.Recipient)
	if len(recipients) == 0 {
		return nil
	}

	content := ResolveContent(evt.Kind, evt.Content)

	ticketID := evt.TicketID
	if ticketID == nil {
		ticketID = evt.Recipient.TicketID
	}

	return n.dispatcher.Send(ctx, domain.Request{
		Kind:               evt.Kind,
		Recipients:         recipients,
		Title:              content.Title,
		Message:            content.Message,
		Priority:           evt.Priority,
		Channels:           evt.Channels,
		TicketID:           ticketID,
		Metadata:           evt.Metadata,
		Actions:            evt.Actions,
		EducationalContext: evt.EducationalContext,
	})
}
