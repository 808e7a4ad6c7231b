package audit

import (
	"time"

	"rhystmorgan/phoneterm/internal/contactbook"
)

// Action is what happened to a contact.
type Action string

const (
	ActionCreate   Action = "create"
	ActionDelete   Action = "delete"
	ActionDefaults Action = "defaults"
)

// Entry is one line of the history journal.
type Entry struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	ContactID string    `json:"contact_id"`
	Name      string    `json:"name"`
	Number    string    `json:"number,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func actionFor(kind contactbook.EventKind) Action {
	switch kind {
	case contactbook.EventAdded:
		return ActionCreate
	case contactbook.EventRemoved:
		return ActionDelete
	case contactbook.EventDefaultsLoaded:
		return ActionDefaults
	default:
		return Action(kind)
	}
}
