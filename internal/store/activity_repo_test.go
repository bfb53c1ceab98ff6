package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okuznetsov/gumshoe/server/internal/events"
)

func newTestRepo(t *testing.T) *ActivityRepository {
	t.Helper()

	db, err := InitActivityDB(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewActivityRepository(db)
}

func TestActivityRepositoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := events.Activity{
		ID:        "a1",
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Action:    events.ActionTravel,
		RoomID:    "r1",
		UserID:    "alice",
		Message:   "traveled to 111111",
		Metadata:  map[string]any{"location_id": "111111"},
	}
	require.NoError(t, repo.Append(ctx, a))

	got, err := repo.GetByRoom(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, events.ActionTravel, got[0].Action)
	assert.Equal(t, "alice", got[0].UserID)
	assert.Equal(t, "111111", got[0].Metadata["location_id"])
}

func TestActivityRepositoryFiltersByAction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	require.NoError(t, repo.Append(ctx, events.Activity{
		ID: "a1", Timestamp: base, Action: events.ActionTravel, RoomID: "r1",
	}))
	require.NoError(t, repo.Append(ctx, events.Activity{
		ID: "a2", Timestamp: base.Add(time.Second), Action: events.ActionAccuseCorrect, RoomID: "r1",
	}))
	require.NoError(t, repo.Append(ctx, events.Activity{
		ID: "a3", Timestamp: base.Add(2 * time.Second), Action: events.ActionTravel, RoomID: "r2",
	}))

	travels, err := repo.GetByAction(ctx, events.ActionTravel)
	require.NoError(t, err)
	require.Len(t, travels, 2)
	assert.Equal(t, "a1", travels[0].ID)
	assert.Equal(t, "a3", travels[1].ID)
}

func TestActivityRepositoryRejectsDuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := events.Activity{ID: "a1", Timestamp: time.Now().UTC(), Action: events.ActionTravel}
	require.NoError(t, repo.Append(ctx, a))
	assert.Error(t, repo.Append(ctx, a), "the activity log is append-only with unique ids")
}
