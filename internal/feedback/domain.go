// Package feedback collects contact messages and tracks their handling.
package feedback

import (
	"time"

	"github.com/google/uuid"
)

// Feedback types.
const (
	TypeFeedback   = "FEEDBACK"
	TypeBugReport  = "BUG_REPORT"
	TypeSuggestion = "SUGGESTION"
	TypeComplaint  = "COMPLAINT"
	TypeOther      = "OTHER"
)

// Handling statuses.
const (
	StatusNew        = "NEW"
	StatusInProgress = "IN_PROGRESS"
	StatusResolved   = "RESOLVED"
	StatusClosed     = "CLOSED"
)

// Feedback is a single submission. User is nil for anonymous senders.
// AdminNotes never appear in public payloads.
type Feedback struct {
	ID         int64
	User       *uuid.UUID
	Name       string
	Email      string
	Subject    string
	Type       string
	Message    string
	Status     string
	AdminNotes string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SenderDisplay is the sender name for admin views.
func (f *Feedback) SenderDisplay() string {
	if f.Name != "" {
		return f.Name
	}
	return "Anonymous"
}

// ListFilter narrows the admin listing query. Zero values mean "any".
type ListFilter struct {
	Status  string
	Type    string
	Page    int
	PerPage int
}
