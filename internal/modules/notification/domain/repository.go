package domain

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a user's notification listing. Zero values mean
// "no filter"; results are always ordered created_at DESC so pagination
// is stable across pages.
type ListFilter struct {
	Kind     *Kind
	IsRead   *bool
	Priority *Priority
	Limit    int
	Offset   int
}

type NotificationRepository interface {
	// InsertMany persists all records in a single statement. It is
	// all-or-nothing per call.
	InsertMany(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, notificationID, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// TicketHead is the subset of a ticket the recipient resolver needs.
type TicketHead struct {
	ID         uuid.UUID
	Title      string
	CreatorID  uuid.UUID
	AssigneeID *uuid.UUID
}

// TicketDirectory looks up ticket ownership. Implemented by the ticket
// module; kept minimal so resolution failures stay recoverable.
type TicketDirectory interface {
	Head(ctx context.Context, ticketID uuid.UUID) (TicketHead, error)
}
