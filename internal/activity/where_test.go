package activity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildActivityWhereEmpty(t *testing.T) {
	where, args := buildActivityWhere(Filter{}, 1)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildActivityWhereAllFilters(t *testing.T) {
	actor := uuid.New()
	kind := KindFileView
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	where, args := buildActivityWhere(Filter{ActorID: &actor, Kind: &kind, From: &from, To: &to}, 3)

	assert.Equal(t, "WHERE a.user_id = $3 AND a.activity_type = $4 AND a.created_at >= $5 AND a.created_at <= $6", where)
	assert.Equal(t, []any{actor, "file_view", from, to}, args)
}

func TestWhereRangeOnlyUpperBound(t *testing.T) {
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	where, args := whereRange(nil, &to, 1)

	assert.Equal(t, "WHERE a.created_at <= $1", where)
	assert.Equal(t, []any{to}, args)
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("file_search").Valid())
	assert.Len(t, Kinds(), 11)
}
