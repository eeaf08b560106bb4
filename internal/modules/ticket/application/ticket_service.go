package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	notifapp "github.com/eduticket/eduticket-api/internal/modules/notification/application"
	notifdomain "github.com/eduticket/eduticket-api/internal/modules/notification/domain"
	"github.com/eduticket/eduticket-api/internal/modules/ticket/domain"
)

// EventPublisher is the notification entry point. Publishing is
// best-effort by contract: this service logs failures and proceeds.
type EventPublisher interface {
	Publish(ctx context.Context, evt notifapp.Event) error
}

// BlobStore stores attachment content. Implemented by the filestorage
// module.
type BlobStore interface {
	UploadWithKey(ctx context.Context, file io.Reader, key, contentType string) (string, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

type CreateTicketRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	Priority      string     `json:"priority"`
	AssigneeID    *uuid.UUID `json:"assignee_id,omitempty"`
	CourseCode    string     `json:"course_code,omitempty"`
	AcademicLevel string     `json:"academic_level,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
}

// TicketService implements the ticket lifecycle. Every mutating operation
// finishes its own write before notifications fire, and notification
// failures never surface to the caller.
type TicketService struct {
	tickets       domain.TicketRepository
	comments      domain.CommentRepository
	attachments   domain.AttachmentRepository
	triage        domain.TriageClient
	notifier      EventPublisher
	blobs         BlobStore
	triageTimeout time.Duration
	logger        zerolog.Logger
}

func NewTicketService(
	tickets domain.TicketRepository,
	comments domain.CommentRepository,
	attachments domain.AttachmentRepository,
	triage domain.TriageClient,
	notifier EventPublisher,
	blobs BlobStore,
	triageTimeout time.Duration,
	logger zerolog.Logger,
) *TicketService {
	if triageTimeout <= 0 {
		triageTimeout = 3 * time.Second
	}
	return &TicketService{
		tickets:       tickets,
		comments:      comments,
		attachments:   attachments,
		triage:        triage,
		notifier:      notifier,
		blobs:         blobs,
		triageTimeout: triageTimeout,
		logger:        logger.With().Str("component", "ticket_service").Logger(),
	}
}

// SetNotifier installs the notification publisher after construction.
// The ticket and notification modules reference each other at wire-up,
// so one side has to be attached late.
func (s *TicketService) SetNotifier(n EventPublisher) {
	s.notifier = n
}

// Create persists a new ticket. The AI-triage call runs first under a
// bounded timeout; any failure there means the caller's own type and
// priority stand. Notifications fire after the write and cannot fail it.
func (s *TicketService) Create(ctx context.Context, creatorID uuid.UUID, creatorName string, req CreateTicketRequest) (*domain.Ticket, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Description == "" {
		return nil, errors.New("description is required")
	}

	ticketType := domain.Type(req.Type)
	if ticketType == "" {
		ticketType = domain.TypeGeneral
	}
	priority := domain.Priority(req.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}

	suggestion := s.suggest(ctx, req.Title, req.Description, ticketType)
	if suggestion != nil {
		if req.Type == "" && suggestion.SuggestedType != "" {
			ticketType = suggestion.SuggestedType
		}
		if req.Priority == "" && suggestion.SuggestedPriority != "" {
			priority = suggestion.SuggestedPriority
		}
	}

	ticket := &domain.Ticket{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Type:        ticketType,
		Priority:    priority,
		Status:      domain.StatusOpen,
		CreatorID:   creatorID,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if req.CourseCode != "" {
		ticket.CourseCode = &req.CourseCode
	}
	if req.AcademicLevel != "" {
		ticket.AcademicLevel = &req.AcademicLevel
	}
	ticket.DueAt = req.DueAt

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, notifapp.Event{
		Kind: notifdomain.KindTicketCreated,
		Recipient: notifdomain.RecipientContext{
			TicketID:   &ticket.ID,
			CreatorID:  &ticket.CreatorID,
			AssigneeID: ticket.AssigneeID,
		},
		Content:  s.titleContext(ticket, creatorName, ""),
		Metadata: s.metadata(ticket),
	})

	if suggestion != nil && suggestion.Analysis != "" {
		s.publish(ctx, notifapp.Event{
			Kind: notifdomain.KindAITriageComplete,
			Recipient: notifdomain.RecipientContext{
				// Triage results go to the creator directly; the ticket row
				// may not be visible to the resolver yet.
				AssigneeID: &ticket.CreatorID,
			},
			Content: s.titleContext(ticket, creatorName, ""),
			Metadata: notifdomain.Metadata{
				"ticket_id":          ticket.ID.String(),
				"ticket_title":       ticket.Title,
				"suggested_type":     string(suggestion.SuggestedType),
				"suggested_priority": string(suggestion.SuggestedPriority),
				"analysis":           suggestion.Analysis,
			},
		})
	}

	return ticket, nil
}

func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

func (s *TicketService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

// UpdateStatus changes a ticket's status and notifies the creator. A move
// to resolved produces the dedicated resolved notification.
func (s *TicketService) UpdateStatus(ctx context.Context, id uuid.UUID, actorName string, status domain.Status) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	if err := s.tickets.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	kind := notifdomain.KindTicketStatusChanged
	if status == domain.StatusResolved {
		kind = notifdomain.KindTicketResolved
	}
	s.publish(ctx, notifapp.Event{
		Kind:      kind,
		Recipient: notifdomain.RecipientContext{TicketID: &ticket.ID},
		Content:   s.titleContext(ticket, actorName, string(status)),
		Metadata:  s.metadata(ticket),
	})

	return ticket, nil
}

// UpdateAssignee re-assigns a ticket. The new assignee is passed through
// to recipient resolution explicitly so the notification does not depend
// on reading back the row just written.
func (s *TicketService) UpdateAssignee(ctx context.Context, id uuid.UUID, actorName string, assigneeID *uuid.UUID) (*domain.Ticket, error) {
	if err := s.tickets.UpdateAssignee(ctx, id, assigneeID); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		s.publish(ctx, notifapp.Event{
			Kind: notifdomain.KindTicketAssigned,
			Recipient: notifdomain.RecipientContext{
				TicketID:   &ticket.ID,
				AssigneeID: assigneeID,
			},
			Content:  s.titleContext(ticket, actorName, ""),
			Metadata: s.metadata(ticket),
		})
	}

	return ticket, nil
}

// AddComment posts a comment and notifies everyone on the ticket except
// the author.
func (s *TicketService) AddComment(ctx context.Context, ticketID, authorID uuid.UUID, authorName, body string) (*domain.Comment, error) {
	if body == "" {
		return nil, errors.New("comment body is required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		TicketID:  ticketID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	metadata := s.metadata(ticket)
	metadata["comment_id"] = comment.ID.String()
	s.publish(ctx, notifapp.Event{
		Kind: notifdomain.KindCommentAdded,
		Recipient: notifdomain.RecipientContext{
			TicketID:        &ticketID,
			CommentAuthorID: &authorID,
		},
		Content:  s.titleContext(ticket, authorName, ""),
		Metadata: metadata,
	})

	return comment, nil
}

func (s *TicketService) ListComments(ctx context.Context, ticketID uuid.UUID) ([]domain.Comment, error) {
	return s.comments.ListByTicket(ctx, ticketID)
}

// AddAttachment stores the file content and records it on the ticket.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID, uploaderID uuid.UUID, fileName, contentType string, size int64, content io.Reader) (*domain.Attachment, error) {
	if s.blobs == nil {
		return nil, errors.New("attachment storage not configured")
	}
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tickets/%s/%s%s", ticketID, uuid.New(), filepath.Ext(fileName))
	if _, err := s.blobs.UploadWithKey(ctx, content, key, contentType); err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		ID:         uuid.New(),
		TicketID:   ticketID,
		UploaderID: uploaderID,
		FileName:   fileName,
		StorageKey: key,
		SizeBytes:  size,
		CreatedAt:  time.Now(),
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *TicketService) ListAttachments(ctx context.Context, ticketID uuid.UUID) ([]domain.Attachment, error) {
	return s.attachments.ListByTicket(ctx, ticketID)
}

// AttachmentURL returns a time-limited download link.
func (s *TicketService) AttachmentURL(ctx context.Context, a *domain.Attachment) (string, error) {
	if s.blobs == nil {
		return "", errors.New("attachment storage not configured")
	}
	return s.blobs.GetPresignedURL(ctx, a.StorageKey, 15*time.Minute)
}

// suggest runs AI triage under its own deadline. nil means no suggestion;
// errors and timeouts are the same thing here.
func (s *TicketService) suggest(ctx context.Context, title, description string, ticketType domain.Type) *domain.TriageSuggestion {
	if s.triage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.triageTimeout)
	defer cancel()

	suggestion, err := s.triage.Suggest(ctx, title, description, ticketType)
	if err != nil {
		s.logger.Debug().Err(err).Msg("triage unavailable, proceeding without suggestion")
		return nil
	}
	return suggestion
}

// publish dispatches a notification event and swallows the error. The
// primary operation has already committed; a notification failure is a
// log line, not a user-facing problem.
func (s *TicketService) publish(ctx context.Context, evt notifapp.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(evt.Kind)).Msg("notification dispatch failed")
	}
}

func (s *TicketService) titleContext(t *domain.Ticket, userName, status string) notifdomain.TitleContext {
	tc := notifdomain.TitleContext{
		TicketTitle: t.Title,
		UserName:    userName,
		Status:      status,
		Priority:    string(t.Priority),
	}
	if t.CourseCode != nil {
		tc.CourseCode = *t.CourseCode
	}
	return tc
}

func (s *TicketService) metadata(t *domain.Ticket) notifdomain.Metadata {
	m := notifdomain.Metadata{
		"ticket_id":    t.ID.String(),
		"ticket_title": t.Title,
	}
	if t.CourseCode != nil {
		m["course_code"] = *t.CourseCode
	}
	return m
}
