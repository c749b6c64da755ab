package audit

import (
	"time"

	id "personpatch/pkg/domain"
)

// Action names a change to a person.
type Action string

const (
	ActionPersonCreated Action = "person_created"
	ActionPersonPatched Action = "person_patched"
)

// Event is emitted by the person service after a successful write. It never
// carries personal data: only the id and which sub-groupings changed.
type Event struct {
	Action          Action      `json:"action"`
	PersonID        id.PersonID `json:"person_id"`
	ChangedSections []string    `json:"changed_sections,omitempty"`
	RequestID       string      `json:"request_id,omitempty"`
	Timestamp       time.Time   `json:"timestamp"`
}
