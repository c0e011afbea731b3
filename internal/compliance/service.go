package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/infinityfire/api/internal/respond"
)

type testStore interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Test, error)
	Get(ctx context.Context, userID, id uuid.UUID) (Test, error)
	List(ctx context.Context, userID uuid.UUID, testType *TestType) ([]Test, error)
	Update(ctx context.Context, userID, id uuid.UUID, p patch) (Test, error)
	Stats(ctx context.Context, userID uuid.UUID) (Stats, error)
}

// Service manages the caller's compliance tests.
type Service struct {
	store testStore
}

// NewService constructs a Service.
func NewService(store testStore) *Service {
	return &Service{store: store}
}

// Create records a new pending test after validating its data.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Test, error) {
	if !in.TestType.Valid() {
		return Test{}, &ValidationError{Fields: []respond.FieldError{{
			Field:   "testType",
			Message: "testType must be one of: test1 test2 fire_drill",
		}}}
	}
	if err := ValidateTestData(in.TestType, in.TestData); err != nil {
		return Test{}, err
	}
	return s.store.Create(ctx, userID, in)
}

// Update changes only the provided fields of one of the caller's tests.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (Test, error) {
	current, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return Test{}, err
	}

	p := patch{status: in.Status}
	if in.Status != nil {
		if err := ValidateTransition(current.Status, *in.Status); err != nil {
			return Test{}, err
		}
	}
	if in.Result != nil {
		p.setResult = true
		if !isJSONNull(in.Result) {
			if !json.Valid(in.Result) {
				return Test{}, &ValidationError{Fields: []respond.FieldError{{Field: "result", Message: "result must be valid JSON"}}}
			}
			p.result = []byte(in.Result)
		}
	}
	if in.Notes != nil {
		p.setNotes = true
		if !isJSONNull(in.Notes) {
			var notes string
			if err := json.Unmarshal(in.Notes, &notes); err != nil {
				return Test{}, &ValidationError{Fields: []respond.FieldError{{Field: "notes", Message: "notes must be a string"}}}
			}
			p.notes = &notes
		}
	}

	return s.store.Update(ctx, userID, id, p)
}

// ListMine returns every test of the caller, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]Test, error) {
	return s.store.List(ctx, userID, nil)
}

// History returns the caller's tests of one type, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, testType TestType) ([]Test, error) {
	if !testType.Valid() {
		return nil, &ValidationError{Fields: []respond.FieldError{{Field: "testType", Message: "invalid test type"}}}
	}
	return s.store.List(ctx, userID, &testType)
}

// Stats counts the caller's tests.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (Stats, error) {
	return s.store.Stats(ctx, userID)
}

// ParseStatus converts raw input, rejecting values outside the enumeration.
func ParseStatus(raw string) (Status, error) {
	st := Status(strings.TrimSpace(raw))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return st, nil
}
