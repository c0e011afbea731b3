package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const recentWindow = 24 * time.Hour

type queryStore interface {
	List(ctx context.Context, f Filter) ([]Record, int, error)
	ListForActor(ctx context.Context, actorID uuid.UUID, from, to *time.Time, limit int) ([]Record, error)
	CountByKind(ctx context.Context, from, to *time.Time) ([]KindCount, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	CountDistinctActors(ctx context.Context, from, to *time.Time) (int, error)
	FindActor(ctx context.Context, id uuid.UUID) (ActorProfile, error)
}

// Service answers the admin activity queries.
type Service struct {
	store queryStore
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store queryStore) *Service {
	return &Service{store: store, now: time.Now}
}

// List returns one page of records matching f, newest first.
func (s *Service) List(ctx context.Context, f Filter) (Page, error) {
	f = f.normalize()

	records, total, err := s.store.List(ctx, f)
	if err != nil {
		return Page{}, err
	}

	pages := 0
	if total > 0 {
		pages = (total + f.Limit - 1) / f.Limit
	}
	return Page{
		Records: records,
		Pagination: Pagination{
			Page:  f.Page,
			Limit: f.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

// Stats aggregates the range. The recent count always covers the last 24
// hours and ignores the range.
func (s *Service) Stats(ctx context.Context, from, to *time.Time) (Stats, error) {
	counts, err := s.store.CountByKind(ctx, from, to)
	if err != nil {
		return Stats{}, err
	}
	recent, err := s.store.CountSince(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return Stats{}, err
	}
	actors, err := s.store.CountDistinctActors(ctx, from, to)
	if err != nil {
		return Stats{}, err
	}

	total := 0
	for _, kc := range counts {
		total += kc.Count
	}
	return Stats{
		ActivityCounts:   counts,
		RecentActivities: recent,
		UniqueUsers:      actors,
		TotalActivities:  total,
	}, nil
}

// UserActivity returns the newest records of one user.
func (s *Service) UserActivity(ctx context.Context, userID uuid.UUID, from, to *time.Time) (UserActivity, error) {
	profile, err := s.store.FindActor(ctx, userID)
	if err != nil {
		return UserActivity{}, err
	}
	records, err := s.store.ListForActor(ctx, userID, from, to, userActivityLimit)
	if err != nil {
		return UserActivity{}, err
	}
	return UserActivity{
		User:            profile,
		Activities:      records,
		TotalActivities: len(records),
	}, nil
}
