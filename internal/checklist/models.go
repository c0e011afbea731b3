package checklist

import (
	"time"

	"github.com/google/uuid"
)

// Type selects the item set of a checklist.
type Type string

const (
	TypeOpening Type = "opening"
	TypeClosing Type = "closing"
)

// Valid reports whether t is a known checklist type.
func (t Type) Valid() bool {
	return t == TypeOpening || t == TypeClosing
}

// Status is the lifecycle state of a checklist.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusVerified   Status = "verified"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusVerified:
		return true
	}
	return false
}

// Checklist is one opening or closing walk-through.
type Checklist struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"userId"`
	ChecklistType       Type      `json:"checklistType"`
	CheckDate           time.Time `json:"checkDate"`
	ConductedBy         string    `json:"conductedBy"`
	Items               Items     `json:"items"`
	Notes               *string   `json:"notes"`
	OverallConfirmation *string   `json:"overallConfirmation"`
	Signature           *string   `json:"signature"`
	Status              Status    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// CreateInput carries a new checklist. A zero CheckDate means now.
type CreateInput struct {
	ChecklistType Type
	ConductedBy   string
	CheckDate     time.Time
	Notes         *string
}

// UpdateInput carries header changes. Nil fields are left unchanged.
type UpdateInput struct {
	ConductedBy *string
	Notes       *string
	Status      *Status
}

// changes lists the provided fields for the audit record.
func (in UpdateInput) changes() map[string]any {
	out := map[string]any{}
	if in.ConductedBy != nil {
		out["conductedBy"] = *in.ConductedBy
	}
	if in.Notes != nil {
		out["notes"] = *in.Notes
	}
	if in.Status != nil {
		out["status"] = string(*in.Status)
	}
	return out
}

// CompleteInput finalises a checklist. A nil Signature keeps the stored one.
type CompleteInput struct {
	OverallConfirmation string
	Signature           *string
}

type newChecklist struct {
	checklistType Type
	conductedBy   string
	checkDate     time.Time
	notes         *string
	items         []byte
}
