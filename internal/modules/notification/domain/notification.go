package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the event a notification was produced for. Every kind
// has exactly one content template and a default priority/channel set.
type Kind string

const (
	KindTicketCreated       Kind = "ticket_created"
	KindTicketAssigned      Kind = "ticket_assigned"
	KindTicketStatusChanged Kind = "ticket_status_changed"
	KindTicketResolved      Kind = "ticket_resolved"
	KindTicketDueSoon       Kind = "ticket_due_soon"
	KindCommentAdded        Kind = "comment_added"
	KindMention             Kind = "mention"
	KindAITriageComplete    Kind = "ai_triage_complete"
	KindAssignmentFailed    Kind = "assignment_failed"
	KindDeadlineWarning     Kind = "deadline_warning"
	KindSimilarTicketFound  Kind = "similar_ticket_found"
	KindWeeklyReport        Kind = "weekly_report"
	KindTrendAlert          Kind = "trend_alert"
	KindWorkloadHigh        Kind = "workload_high"
	KindSLABreach           Kind = "sla_breach"
)

// Kinds lists every known notification kind.
func Kinds() []Kind {
	return []Kind{
		KindTicketCreated, KindTicketAssigned, KindTicketStatusChanged,
		KindTicketResolved, KindTicketDueSoon, KindCommentAdded,
		KindMention, KindAITriageComplete, KindAssignmentFailed,
		KindDeadlineWarning, KindSimilarTicketFound, KindWeeklyReport,
		KindTrendAlert, KindWorkloadHigh, KindSLABreach,
	}
}

// Priority orders notifications for display. It has no scheduling role.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Channel is a delivery mechanism. Only in_app and email are delivered;
// discord and sms are accepted and recorded but never dispatched.
type Channel string

const (
	ChannelInApp   Channel = "in_app"
	ChannelEmail   Channel = "email"
	ChannelDiscord Channel = "discord"
	ChannelSMS     Channel = "sms"
)

// Notification is one persisted in-app record. Fan-out produces one record
// per recipient; records are never merged across sends.
type Notification struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	UserID            uuid.UUID   `json:"user_id" db:"user_id"`
	Kind              Kind        `json:"kind" db:"kind"`
	Title             string      `json:"title" db:"title"`
	Message           string      `json:"message" db:"message"`
	Priority          Priority    `json:"priority" db:"priority"`
	TicketID          *uuid.UUID  `json:"ticket_id,omitempty" db:"ticket_id"`
	Metadata          Metadata    `json:"metadata,omitempty" db:"metadata"`
	Actions           Actions     `json:"actions,omitempty" db:"actions"`
	DeliveredChannels ChannelList `json:"delivered_channels" db:"delivered_channels"`
	IsRead            bool        `json:"is_read" db:"is_read"`
	ReadAt            *time.Time  `json:"read_at,omitempty" db:"read_at"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// Defaults returns the priority and channel set used when a request does
// not specify its own.
func (k Kind) Defaults() (Priority, []Channel) {
	switch k {
	case KindSLABreach, KindAssignmentFailed:
		return PriorityUrgent, []Channel{ChannelInApp, ChannelEmail}
	case KindTicketDueSoon, KindDeadlineWarning, KindWorkloadHigh:
		return PriorityHigh, []Channel{ChannelInApp, ChannelEmail}
	case KindTicketAssigned, KindTicketStatusChanged, KindTicketResolved, KindMention:
		return PriorityMedium, []Channel{ChannelInApp, ChannelEmail}
	case KindWeeklyReport, KindTrendAlert, KindSimilarTicketFound, KindAITriageComplete:
		return PriorityLow, []Channel{ChannelInApp}
	default:
		return PriorityMedium, []Channel{ChannelInApp}
	}
}

var (
	ErrNotificationNotFound = errors.New("notification not found")
)
