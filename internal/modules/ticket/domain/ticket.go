package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeQuestion Type = "question"
	TypeBug      Type = "bug"
	TypeFeature  Type = "feature"
	TypeGeneral  Type = "general"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// ValidStatus reports whether s is a known ticket status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Ticket is one support request.
type Ticket struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Type          Type       `json:"type" db:"type"`
	Priority      Priority   `json:"priority" db:"priority"`
	Status        Status     `json:"status" db:"status"`
	CreatorID     uuid.UUID  `json:"creator_id" db:"creator_id"`
	AssigneeID    *uuid.UUID `json:"assignee_id,omitempty" db:"assignee_id"`
	CourseCode    *string    `json:"course_code,omitempty" db:"course_code"`
	AcademicLevel *string    `json:"academic_level,omitempty" db:"academic_level"`
	DueAt         *time.Time `json:"due_at,omitempty" db:"due_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TicketID  uuid.UUID `json:"ticket_id" db:"ticket_id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Attachment is a file stored against a ticket.
type Attachment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TicketID   uuid.UUID `json:"ticket_id" db:"ticket_id"`
	UploaderID uuid.UUID `json:"uploader_id" db:"uploader_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	StorageKey string    `json:"-" db:"storage_key"`
	SizeBytes  int64     `json:"size_bytes" db:"size_bytes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TriageSuggestion is the normalized result of the AI-triage call.
type TriageSuggestion struct {
	SuggestedType     Type
	SuggestedPriority Priority
	Analysis          string
}

// ListFilter narrows ticket listings.
type ListFilter struct {
	CreatorID  *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *Status
	Limit      int
	Offset     int
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdateAssignee(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]Comment, error)
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
	ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]Attachment, error)
}

// TriageClient asks the AI endpoint for a type/priority suggestion. The
// caller treats any error, including timeout, as "no suggestion".
type TriageClient interface {
	Suggest(ctx context.Context, title, description string, ticketType Type) (*TriageSuggestion, error)
}

var (
	ErrTicketNotFound = errors.New("ticket not found")
)
