package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	tests map[uuid.UUID]Test
	clock time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tests: map[uuid.UUID]Test{}, clock: time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)}
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryStore) Create(_ context.Context, userID uuid.UUID, in CreateInput) (Test, error) {
	now := m.tick()
	t := Test{
		ID:        uuid.New(),
		UserID:    userID,
		TestType:  in.TestType,
		TestData:  in.TestData,
		Status:    StatusPending,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.tests[t.ID] = t
	return t, nil
}

func (m *memoryStore) Get(_ context.Context, userID, id uuid.UUID) (Test, error) {
	t, ok := m.tests[id]
	if !ok || t.UserID != userID {
		return Test{}, ErrTestNotFound
	}
	return t, nil
}

func (m *memoryStore) List(_ context.Context, userID uuid.UUID, testType *TestType) ([]Test, error) {
	out := []Test{}
	for _, t := range m.tests {
		if t.UserID != userID || (testType != nil && t.TestType != *testType) {
			continue
		}
		out = append(out, t)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memoryStore) Update(ctx context.Context, userID, id uuid.UUID, p patch) (Test, error) {
	t, err := m.Get(ctx, userID, id)
	if err != nil {
		return Test{}, err
	}
	if p.status != nil {
		t.Status = *p.status
	}
	if p.setResult {
		t.Result = p.result
	}
	if p.setNotes {
		t.Notes = p.notes
	}
	t.UpdatedAt = m.tick()
	m.tests[id] = t
	return t, nil
}

func (m *memoryStore) Stats(_ context.Context, userID uuid.UUID) (Stats, error) {
	var s Stats
	for _, t := range m.tests {
		if t.UserID != userID {
			continue
		}
		switch t.TestType {
		case TypeTest1:
			s.Test1Count++
		case TypeTest2:
			s.Test2Count++
		case TypeFireDrill:
			s.FireDrillCount++
		}
		switch t.Status {
		case StatusCompleted:
			s.CompletedTests++
		case StatusPending:
			s.PendingTests++
		}
	}
	s.TotalTests = s.Test1Count + s.Test2Count + s.FireDrillCount
	return s, nil
}

const test1Data = `{"fullName":"Jo Park","date":"2024-04-01","time":"09:00","location":"Main hall"}`

func statusPtr(s Status) *Status { return &s }

func TestCreateStartsPending(t *testing.T) {
	svc := NewService(newMemoryStore())
	user := uuid.New()

	test, err := svc.Create(context.Background(), user, CreateInput{TestType: TypeTest1, TestData: json.RawMessage(test1Data)})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, test.Status)
	assert.Nil(t, test.Result)
	assert.Nil(t, test.Notes)
}

func TestCreateListsMissingFields(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		TestType: TypeFireDrill,
		TestData: json.RawMessage(`{"drillLeaderName":"  ","dateTime":"2024-04-01T09:00","involvedPersons":[]}`),
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	var fields []string
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"testData.drillLeaderName", "testData.locationOfTrigger", "testData.involvedPersons"}, fields)
}

func TestCreateRejectsNonObjectData(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{TestType: TypeTest2, TestData: json.RawMessage(`"just text"`)})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "testData", verr.Fields[0].Field)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{TestType: "test3", TestData: json.RawMessage(test1Data)})

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestUpdatePreservesResultAcrossReopen(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()
	user := uuid.New()
	test, err := svc.Create(ctx, user, CreateInput{TestType: TypeTest1, TestData: json.RawMessage(test1Data)})
	require.NoError(t, err)

	failed, err := svc.Update(ctx, user, test.ID, UpdateInput{
		Status: statusPtr(StatusFailed),
		Result: json.RawMessage(`{"alarmAudible":false}`),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, failed.Status)

	reopened, err := svc.Update(ctx, user, test.ID, UpdateInput{Status: statusPtr(StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reopened.Status)
	assert.JSONEq(t, `{"alarmAudible":false}`, string(reopened.Result))
}

func TestUpdateNotesCanBeCleared(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()
	user := uuid.New()
	notes := "north exit blocked"
	test, err := svc.Create(ctx, user, CreateInput{TestType: TypeTest2, TestData: json.RawMessage(test1Data), Notes: &notes})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, user, test.ID, UpdateInput{Notes: json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestUpdateScopedToOwner(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()
	test, err := svc.Create(ctx, uuid.New(), CreateInput{TestType: TypeTest1, TestData: json.RawMessage(test1Data)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, uuid.New(), test.ID, UpdateInput{Status: statusPtr(StatusCompleted)})

	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestValidateTransition(t *testing.T) {
	statuses := []Status{StatusPending, StatusCompleted, StatusFailed}
	for _, from := range statuses {
		for _, to := range statuses {
			assert.NoError(t, ValidateTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.ErrorIs(t, ValidateTransition(StatusPending, "archived"), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateTransition("archived", StatusPending), ErrInvalidStatus)
}

func TestHistoryAndStats(t *testing.T) {
	svc := NewService(newMemoryStore())
	ctx := context.Background()
	user := uuid.New()
	drill := `{"drillLeaderName":"Sam","dateTime":"2024-04-01T10:00","locationOfTrigger":"Kitchen","involvedPersons":["Sam","Ana"]}`

	first, err := svc.Create(ctx, user, CreateInput{TestType: TypeTest1, TestData: json.RawMessage(test1Data)})
	require.NoError(t, err)
	second, err := svc.Create(ctx, user, CreateInput{TestType: TypeTest1, TestData: json.RawMessage(test1Data)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user, CreateInput{TestType: TypeFireDrill, TestData: json.RawMessage(drill)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, user, first.ID, UpdateInput{Status: statusPtr(StatusCompleted)})
	require.NoError(t, err)

	history, err := svc.History(ctx, user, TypeTest1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)

	stats, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, Stats{Test1Count: 2, FireDrillCount: 1, CompletedTests: 1, PendingTests: 2, TotalTests: 3}, stats)

	_, err = svc.History(ctx, user, "drill")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
