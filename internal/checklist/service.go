package checklist

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/infinityfire/api/internal/activity"
)

type checklistStore interface {
	Create(ctx context.Context, userID uuid.UUID, in newChecklist) (Checklist, error)
	Get(ctx context.Context, userID, id uuid.UUID) (Checklist, error)
	List(ctx context.Context, userID uuid.UUID) ([]Checklist, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateInput) (Checklist, error)
	MergeItems(ctx context.Context, userID, id uuid.UUID, patch []byte) (Checklist, error)
	Complete(ctx context.Context, userID, id uuid.UUID, in CompleteInput) (Checklist, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type activityRecorder interface {
	Record(ctx context.Context, actorID uuid.UUID, kind activity.Kind, description string, rc activity.RequestContext, metadata map[string]any)
}

// Service manages the caller's venue checklists and audits every mutation.
type Service struct {
	store    checklistStore
	activity activityRecorder
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(store checklistStore, recorder activityRecorder) *Service {
	return &Service{store: store, activity: recorder, now: time.Now}
}

// List returns the caller's checklists newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Checklist, error) {
	return s.store.List(ctx, userID)
}

// Get returns one of the caller's checklists.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (Checklist, error) {
	return s.store.Get(ctx, userID, id)
}

// Create starts a checklist with every item unticked.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, rc activity.RequestContext, in CreateInput) (Checklist, error) {
	if !in.ChecklistType.Valid() {
		return Checklist{}, fmt.Errorf("%w: %q", ErrUnknownType, in.ChecklistType)
	}
	checkDate := in.CheckDate
	if checkDate.IsZero() {
		checkDate = s.now().UTC()
	}

	cl, err := s.store.Create(ctx, userID, newChecklist{
		checklistType: in.ChecklistType,
		conductedBy:   strings.TrimSpace(in.ConductedBy),
		checkDate:     checkDate,
		notes:         in.Notes,
		items:         blankItems(in.ChecklistType),
	})
	if err != nil {
		return Checklist{}, err
	}

	s.activity.Record(ctx, userID, activity.KindVenueChecklistCreated,
		fmt.Sprintf("Created %s checklist", cl.ChecklistType), rc, map[string]any{
			"checklistId":   cl.ID.String(),
			"checklistType": string(cl.ChecklistType),
			"conductedBy":   cl.ConductedBy,
		})
	return cl, nil
}

// Update changes the checklist header. Any status may be set from any state.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, rc activity.RequestContext, in UpdateInput) (Checklist, error) {
	if in.Status != nil && !in.Status.Valid() {
		return Checklist{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *in.Status)
	}

	cl, err := s.store.Update(ctx, userID, id, in)
	if err != nil {
		return Checklist{}, err
	}

	s.activity.Record(ctx, userID, activity.KindVenueChecklistUpdated,
		fmt.Sprintf("Updated %s checklist", cl.ChecklistType), rc, map[string]any{
			"checklistId":   cl.ID.String(),
			"checklistType": string(cl.ChecklistType),
			"changes":       in.changes(),
		})
	return cl, nil
}

// PatchItems ticks or unticks the named items. Every key must belong to the
// checklist's own type.
func (s *Service) PatchItems(ctx context.Context, userID, id uuid.UUID, rc activity.RequestContext, items map[string]bool) (Checklist, error) {
	if len(items) == 0 {
		return Checklist{}, ErrNoItems
	}

	current, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return Checklist{}, err
	}

	keys := make([]string, 0, len(items))
	for key := range items {
		if !hasItem(current.ChecklistType, key) {
			return Checklist{}, fmt.Errorf("%w: %q is not a %s item", ErrUnknownItem, key, current.ChecklistType)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	patch, err := json.Marshal(items)
	if err != nil {
		return Checklist{}, fmt.Errorf("encode items: %w", err)
	}

	cl, err := s.store.MergeItems(ctx, userID, id, patch)
	if err != nil {
		return Checklist{}, err
	}

	s.activity.Record(ctx, userID, activity.KindVenueChecklistItemsUpdated,
		fmt.Sprintf("Updated items in %s checklist", cl.ChecklistType), rc, map[string]any{
			"checklistId":  cl.ID.String(),
			"updatedItems": keys,
		})
	return cl, nil
}

// Complete records the sign-off. Calling it again only replaces the confirmation.
func (s *Service) Complete(ctx context.Context, userID, id uuid.UUID, rc activity.RequestContext, in CompleteInput) (Checklist, error) {
	in.OverallConfirmation = strings.TrimSpace(in.OverallConfirmation)
	if in.OverallConfirmation == "" {
		return Checklist{}, ErrConfirmationRequired
	}

	cl, err := s.store.Complete(ctx, userID, id, in)
	if err != nil {
		return Checklist{}, err
	}

	s.activity.Record(ctx, userID, activity.KindVenueChecklistCompleted,
		fmt.Sprintf("Completed %s checklist", cl.ChecklistType), rc, map[string]any{
			"checklistId":         cl.ID.String(),
			"overallConfirmation": in.OverallConfirmation,
		})
	return cl, nil
}

// Delete removes a checklist. The audit record is written first so it names
// a checklist that still existed.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID, rc activity.RequestContext) error {
	cl, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	s.activity.Record(ctx, userID, activity.KindVenueChecklistDeleted,
		fmt.Sprintf("Deleted %s checklist", cl.ChecklistType), rc, map[string]any{
			"checklistId":   cl.ID.String(),
			"checklistType": string(cl.ChecklistType),
		})

	return s.store.Delete(ctx, userID, id)
}
