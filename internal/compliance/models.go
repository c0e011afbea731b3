package compliance

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TestType identifies the kind of compliance test.
type TestType string

const (
	TypeTest1     TestType = "test1"
	TypeTest2     TestType = "test2"
	TypeFireDrill TestType = "fire_drill"
)

// Valid reports whether t is a known test type.
func (t TestType) Valid() bool {
	switch t {
	case TypeTest1, TypeTest2, TypeFireDrill:
		return true
	}
	return false
}

// Status is the lifecycle state of a test record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Owner is the user summary attached to a test.
type Owner struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// Test is one recorded compliance test.
type Test struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	TestType  TestType        `json:"testType"`
	TestData  json.RawMessage `json:"testData"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result"`
	Notes     *string         `json:"notes"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	User      *Owner          `json:"user,omitempty"`
}

// CreateInput carries a new test.
type CreateInput struct {
	TestType TestType
	TestData json.RawMessage
	Notes    *string
}

// UpdateInput carries the fields to change. A nil Result or Notes leaves the
// stored value alone; a JSON null clears it.
type UpdateInput struct {
	Status *Status
	Result json.RawMessage
	Notes  json.RawMessage
}

// Stats counts one user's tests.
type Stats struct {
	Test1Count     int `json:"test1Count"`
	Test2Count     int `json:"test2Count"`
	FireDrillCount int `json:"fireDrillCount"`
	CompletedTests int `json:"completedTests"`
	PendingTests   int `json:"pendingTests"`
	TotalTests     int `json:"totalTests"`
}

// patch is the resolved update handed to the repository.
type patch struct {
	status    *Status
	setResult bool
	result    []byte
	setNotes  bool
	notes     *string
}
