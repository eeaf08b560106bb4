package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifapp "github.com/eduticket/eduticket-api/internal/modules/notification/application"
	notifdomain "github.com/eduticket/eduticket-api/internal/modules/notification/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

type ticketRepoMock struct {
	createFn         func(context.Context, *domain.Ticket) error
	getByIDFn        func(context.Context, uuid.UUID) (*domain.Ticket, error)
	listFn           func(context.Context, domain.ListFilter) ([]domain.Ticket, error)
	updateStatusFn   func(context.Context, uuid.UUID, domain.Status) error
	updateAssigneeFn func(context.Context, uuid.UUID, *uuid.UUID) error
}

func (m ticketRepoMock) Create(ctx context.Context, t *domain.Ticket) error {
	return m.createFn(ctx, t)
}

func (m ticketRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return m.getByIDFn(ctx, id)
}

func (m ticketRepoMock) List(ctx context.Context, f domain.ListFilter) ([]domain.Ticket, error) {
	return m.listFn(ctx, f)
}

func (m ticketRepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, s domain.Status) error {
	return m.updateStatusFn(ctx, id, s)
}

func (m ticketRepoMock) UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	return m.updateAssigneeFn(ctx, id, assigneeID)
}

type commentRepoMock struct {
	createFn       func(context.Context, *domain.Comment) error
	listByTicketFn func(context.Context, uuid.UUID) ([]domain.Comment, error)
}

func (m commentRepoMock) Create(ctx context.Context, c *domain.Comment) error {
	return m.createFn(ctx, c)
}

func (m commentRepoMock) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.Comment, error) {
	return m.listByTicketFn(ctx, ticketID)
}

type triageMock struct {
	suggestFn func(context.Context, string, string, domain.Type) (*domain.TriageSuggestion, error)
}

func (m triageMock) Suggest(ctx context.Context, title, description string, t domain.Type) (*domain.TriageSuggestion, error) {
	return m.suggestFn(ctx, title, description, t)
}

type publisherMock struct {
	mu        sync.Mutex
	published []notifapp.Event
	err       error
}

func (p *publisherMock) Publish(_ context.Context, evt notifapp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, evt)
	return p.err
}

func (p *publisherMock) events() []notifapp.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notifapp.Event(nil), p.published...)
}

func newService(tickets domain.TicketRepository, comments domain.CommentRepository, triage domain.TriageClient, notifier EventPublisher) *TicketService {
	return NewTicketService(tickets, comments, nil, triage, notifier, nil, time.Second, zerolog.Nop())
}

func TestTicketService_Create(t *testing.T) {
	creatorID := uuid.New()

	t.Run("persists and notifies", func(t *testing.T) {
		var created *domain.Ticket
		repo := ticketRepoMock{
			createFn: func(_ context.Context, tk *domain.Ticket) error {
				created = tk
				return nil
			},
		}
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		ticket, err := svc.Create(context.Background(), creatorID, "Dana", CreateTicketRequest{
			Title:       "Grader timeout",
			Description: "The autograder never finishes.",
			CourseCode:  "CS101",
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, creatorID, ticket.CreatorID)
		assert.Equal(t, domain.StatusOpen, ticket.Status)
		assert.Equal(t, domain.TypeGeneral, ticket.Type)
		assert.Equal(t, domain.PriorityMedium, ticket.Priority)

		events := pub.events()
		require.Len(t, events, 1)
		assert.Equal(t, notifdomain.KindTicketCreated, events[0].Kind)
		require.NotNil(t, events[0].Recipient.TicketID)
		assert.Equal(t, ticket.ID, *events[0].Recipient.TicketID)
		assert.Equal(t, "CS101", events[0].Content.CourseCode)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newService(ticketRepoMock{}, commentRepoMock{}, nil, nil)

		_, err := svc.Create(context.Background(), creatorID, "", CreateTicketRequest{Description: "d"})
		assert.Error(t, err)

		_, err = svc.Create(context.Background(), creatorID, "", CreateTicketRequest{Title: "t"})
		assert.Error(t, err)
	})

	t.Run("triage fills unset type and priority", func(t *testing.T) {
		repo := ticketRepoMock{
			createFn: func(context.Context, *domain.Ticket) error { return nil },
		}
		triage := triageMock{
			suggestFn: func(context.Context, string, string, domain.Type) (*domain.TriageSuggestion, error) {
				return &domain.TriageSuggestion{
					SuggestedType:     domain.TypeBug,
					SuggestedPriority: domain.PriorityHigh,
					Analysis:          "Looks like an infrastructure bug.",
				}, nil
			},
		}
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, triage, pub)

		ticket, err := svc.Create(context.Background(), creatorID, "Dana", CreateTicketRequest{
			Title:       "t",
			Description: "d",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TypeBug, ticket.Type)
		assert.Equal(t, domain.PriorityHigh, ticket.Priority)

		events := pub.events()
		require.Len(t, events, 2)
		assert.Equal(t, notifdomain.KindAITriageComplete, events[1].Kind)
	})

	t.Run("explicit type and priority beat the suggestion", func(t *testing.T) {
		repo := ticketRepoMock{
			createFn: func(context.Context, *domain.Ticket) error { return nil },
		}
		triage := triageMock{
			suggestFn: func(context.Context, string, string, domain.Type) (*domain.TriageSuggestion, error) {
				return &domain.TriageSuggestion{
					SuggestedType:     domain.TypeBug,
					SuggestedPriority: domain.PriorityUrgent,
				}, nil
			},
		}
		svc := newService(repo, commentRepoMock{}, triage, nil)

		ticket, err := svc.Create(context.Background(), creatorID, "", CreateTicketRequest{
			Title:       "t",
			Description: "d",
			Type:        "question",
			Priority:    "low",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TypeQuestion, ticket.Type)
		assert.Equal(t, domain.PriorityLow, ticket.Priority)
	})

	t.Run("triage failure means no suggestion", func(t *testing.T) {
		repo := ticketRepoMock{
			createFn: func(context.Context, *domain.Ticket) error { return nil },
		}
		triage := triageMock{
			suggestFn: func(ctx context.Context, _, _ string, _ domain.Type) (*domain.TriageSuggestion, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		pub := &publisherMock{}
		svc := NewTicketService(repo, commentRepoMock{}, nil, triage, pub, nil, 10*time.Millisecond, zerolog.Nop())

		ticket, err := svc.Create(context.Background(), creatorID, "", CreateTicketRequest{
			Title:       "t",
			Description: "d",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.TypeGeneral, ticket.Type)
		require.Len(t, pub.events(), 1)
	})

	t.Run("notification failure never fails creation", func(t *testing.T) {
		repo := ticketRepoMock{
			createFn: func(context.Context, *domain.Ticket) error { return nil },
		}
		pub := &publisherMock{err: errors.New("notification store down")}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		_, err := svc.Create(context.Background(), creatorID, "", CreateTicketRequest{
			Title:       "t",
			Description: "d",
		})
		assert.NoError(t, err)
	})
}

func TestTicketService_UpdateStatus(t *testing.T) {
	ticketID := uuid.New()
	ticket := &domain.Ticket{ID: ticketID, Title: "T", Status: domain.StatusOpen, CreatorID: uuid.New()}

	repo := ticketRepoMock{
		updateStatusFn: func(_ context.Context, id uuid.UUID, s domain.Status) error {
			assert.Equal(t, ticketID, id)
			return nil
		},
		getByIDFn: func(context.Context, uuid.UUID) (*domain.Ticket, error) {
			return ticket, nil
		},
	}

	t.Run("resolved fires the resolved kind", func(t *testing.T) {
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		_, err := svc.UpdateStatus(context.Background(), ticketID, "Dana", domain.StatusResolved)
		require.NoError(t, err)

		events := pub.events()
		require.Len(t, events, 1)
		assert.Equal(t, notifdomain.KindTicketResolved, events[0].Kind)
	})

	t.Run("other transitions fire status changed", func(t *testing.T) {
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		_, err := svc.UpdateStatus(context.Background(), ticketID, "Dana", domain.StatusInProgress)
		require.NoError(t, err)

		events := pub.events()
		require.Len(t, events, 1)
		assert.Equal(t, notifdomain.KindTicketStatusChanged, events[0].Kind)
		assert.Equal(t, "in_progress", events[0].Content.Status)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		svc := newService(repo, commentRepoMock{}, nil, nil)
		_, err := svc.UpdateStatus(context.Background(), ticketID, "", domain.Status("archived"))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "archived"))
	})
}

func TestTicketService_UpdateAssignee(t *testing.T) {
	ticketID := uuid.New()
	assigneeID := uuid.New()
	ticket := &domain.Ticket{ID: ticketID, Title: "T", CreatorID: uuid.New()}

	t.Run("notifies new assignee", func(t *testing.T) {
		repo := ticketRepoMock{
			updateAssigneeFn: func(_ context.Context, id uuid.UUID, got *uuid.UUID) error {
				assert.Equal(t, ticketID, id)
				require.NotNil(t, got)
				assert.Equal(t, assigneeID, *got)
				return nil
			},
			getByIDFn: func(context.Context, uuid.UUID) (*domain.Ticket, error) { return ticket, nil },
		}
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		_, err := svc.UpdateAssignee(context.Background(), ticketID, "Dana", &assigneeID)
		require.NoError(t, err)

		events := pub.events()
		require.Len(t, events, 1)
		assert.Equal(t, notifdomain.KindTicketAssigned, events[0].Kind)
		require.NotNil(t, events[0].Recipient.AssigneeID)
		assert.Equal(t, assigneeID, *events[0].Recipient.AssigneeID)
	})

	t.Run("unassigning is silent", func(t *testing.T) {
		repo := ticketRepoMock{
			updateAssigneeFn: func(context.Context, uuid.UUID, *uuid.UUID) error { return nil },
			getByIDFn:        func(context.Context, uuid.UUID) (*domain.Ticket, error) { return ticket, nil },
		}
		pub := &publisherMock{}
		svc := newService(repo, commentRepoMock{}, nil, pub)

		_, err := svc.UpdateAssignee(context.Background(), ticketID, "Dana", nil)
		require.NoError(t, err)
		assert.Empty(t, pub.events())
	})
}

func TestTicketService_AddComment(t *testing.T) {
	ticketID := uuid.New()
	authorID := uuid.New()
	ticket := &domain.Ticket{ID: ticketID, Title: "T", CreatorID: uuid.New()}

	repo := ticketRepoMock{
		getByIDFn: func(context.Context, uuid.UUID) (*domain.Ticket, error) { return ticket, nil },
	}

	t.Run("persists and excludes the author from recipients", func(t *testing.T) {
		var created *domain.Comment
		comments := commentRepoMock{
			createFn: func(_ context.Context, c *domain.Comment) error {
				created = c
				return nil
			},
		}
		pub := &publisherMock{}
		svc := newService(repo, comments, nil, pub)

		comment, err := svc.AddComment(context.Background(), ticketID, authorID, "Dana", "Any update?")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, authorID, comment.AuthorID)

		events := pub.events()
		require.Len(t, events, 1)
		assert.Equal(t, notifdomain.KindCommentAdded, events[0].Kind)
		require.NotNil(t, events[0].Recipient.CommentAuthorID)
		assert.Equal(t, authorID, *events[0].Recipient.CommentAuthorID)
		assert.Equal(t, comment.ID.String(), events[0].Metadata["comment_id"])
	})

	t.Run("empty body rejected", func(t *testing.T) {
		svc := newService(repo, commentRepoMock{}, nil, nil)
		_, err := svc.AddComment(context.Background(), ticketID, authorID, "", "")
		assert.Error(t, err)
	})

	t.Run("missing ticket surfaces not found", func(t *testing.T) {
		repo := ticketRepoMock{
			getByIDFn: func(context.Context, uuid.UUID) (*domain.Ticket, error) {
				return nil, domain.ErrTicketNotFound
			},
		}
		svc := newService(repo, commentRepoMock{}, nil, nil)
		_, err := svc.AddComment(context.Background(), ticketID, authorID, "", "hi")
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})
}
