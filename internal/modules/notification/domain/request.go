package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is a call-to-action link rendered with a notification.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// EducationalContext carries optional course-related fields used by the
// email formatter's context panel.
type EducationalContext struct {
	AcademicLevel string     `json:"academic_level,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	UrgencyScore  float64    `json:"urgency_score,omitempty"`
}

// Request is the ephemeral payload handed to the dispatcher. It is never
// persisted; the dispatcher expands it into one Notification per recipient.
type Request struct {
	Kind               Kind
	Recipients         []uuid.UUID
	Title              string
	Message            string
	Priority           Priority
	Channels           []Channel
	TicketID           *uuid.UUID
	Metadata           Metadata
	Actions            []Action
	EducationalContext *EducationalContext
}

// HasChannel reports whether the request asked for the given channel.
func (r Request) HasChannel(c Channel) bool {
	for _, ch := range r.Channels {
		if ch == c {
			return true
		}
	}
	return false
}

// TitleContext carries the optional fields content templates interpolate.
type TitleContext struct {
	TicketTitle string
	CourseCode  string
	UserName    string
	Status      string
	Priority    string
}

// RecipientContext identifies the actors involved in the triggering event.
// All fields are optional; an empty context resolves to no recipients.
type RecipientContext struct {
	TicketID        *uuid.UUID
	CreatorID       *uuid.UUID
	AssigneeID      *uuid.UUID
	CommentAuthorID *uuid.UUID
}

// Metadata is an arbitrary JSON object stored alongside a notification.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	return scanJSON(src, m)
}

// Actions is the persisted form of a notification's action list.
type Actions []Action

func (a Actions) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

func (a *Actions) Scan(src any) error {
	return scanJSON(src, a)
}

// ChannelList is the persisted form of a notification's channel set.
type ChannelList []Channel

func (c ChannelList) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *ChannelList) Scan(src any) error {
	return scanJSON(src, c)
}

func scanJSON(src, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}
