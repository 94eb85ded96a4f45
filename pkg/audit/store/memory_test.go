package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayhangulbjk/ebs-insight/pkg/intent"
	"github.com/ayhangulbjk/ebs-insight/pkg/router"
)

func testRecord(id string, at time.Time) *Record {
	return &Record{
		ID:           id,
		ReceivedAt:   at,
		Prompt:       "concurrent manager sağlık durumu",
		IntentResult: intent.Result{Intent: intent.EBSControl, Confidence: 0.8},
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	rec := testRecord("r1", time.Now())
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, intent.EBSControl, got.IntentResult.Intent)

	// The returned record is a copy; mutating it must not leak back.
	got.Prompt = "changed"
	again, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "concurrent manager sağlık durumu", again.Prompt)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore(10)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreEvictsOldestAtCapacity(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, testRecord(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	assert.Equal(t, 3, s.Len())
	_, err := s.Get(ctx, "r0")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "r4")
	assert.NoError(t, err)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Put(ctx, testRecord(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	out, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "r3", out[0].ID)
	assert.Equal(t, "r0", out[3].ID)

	out, err = s.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "r3", out[0].ID)
	assert.Equal(t, "r2", out[1].ID)
}

func TestMemoryStoreListFilters(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	chit := testRecord("chit", base)
	chit.IntentResult = intent.Result{Intent: intent.ChitChat, Confidence: 0.9}
	require.NoError(t, s.Put(ctx, chit))

	routed := testRecord("routed", base.Add(time.Minute))
	routed.Decision = &router.Decision{SelectedControlID: "concurrent_mgr_health"}
	require.NoError(t, s.Put(ctx, routed))

	late := testRecord("late", base.Add(time.Hour))
	require.NoError(t, s.Put(ctx, late))

	t.Run("by intent", func(t *testing.T) {
		out, err := s.List(ctx, ListOptions{Intent: intent.ChitChat})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "chit", out[0].ID)
	})

	t.Run("by selected control", func(t *testing.T) {
		out, err := s.List(ctx, ListOptions{SelectedControl: "concurrent_mgr_health"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "routed", out[0].ID)
	})

	t.Run("by time window", func(t *testing.T) {
		since := base.Add(30 * time.Second)
		until := base.Add(30 * time.Minute)
		out, err := s.List(ctx, ListOptions{Since: &since, Until: &until})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "routed", out[0].ID)
	})
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(Config{Backend: "memory", MaxRecords: 5})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = New(Config{Backend: "cassandra"})
	assert.Error(t, err)
}
