package store_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifai/unifai/internal/platform"
	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
)

// recorder is the behaviour both stores share.
type recorder interface {
	Insert(ctx context.Context, rec store.Record) error
	SetExplanation(ctx context.Context, id, text string) error
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, f store.Filter) ([]store.Record, error)
}

func newRecord(module scoring.Module, at time.Time) store.Record {
	return store.Record{
		ID:        uuid.NewString(),
		Module:    module,
		Input:     json.RawMessage(`{"symptoms":"yellow spots"}`),
		Result:    scoring.Result{Prediction: "DETECTED: LEAF BLIGHT", Confidence: 0.82, RiskLevel: scoring.RiskHigh},
		CreatedAt: at.UTC().Truncate(time.Microsecond),
	}
}

func exerciseRecorder(t *testing.T, r recorder) {
	ctx := context.Background()
	base := time.Now()

	first := newRecord(scoring.ModulePlantDisease, base)
	second := newRecord(scoring.ModuleStress, base.Add(time.Minute))
	third := newRecord(scoring.ModulePlantDisease, base.Add(2*time.Minute))
	for _, rec := range []store.Record{first, second, third} {
		require.NoError(t, r.Insert(ctx, rec))
	}

	got, err := r.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Module, got.Module)
	assert.Equal(t, second.Result, got.Result)
	assert.JSONEq(t, string(second.Input), string(got.Input))
	assert.Empty(t, got.Explanation)

	require.NoError(t, r.SetExplanation(ctx, second.ID, "Sleep is short."))
	got, err = r.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sleep is short.", got.Explanation)

	list, err := r.List(ctx, store.Filter{Module: scoring.ModulePlantDisease})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(list), 2)
	assert.Equal(t, third.ID, list[0].ID, "newest first")

	list, err = r.List(ctx, store.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	missing := uuid.NewString()
	_, err = r.Get(ctx, missing)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, r.SetExplanation(ctx, missing, "x"), store.ErrNotFound)
}

func TestMemory(t *testing.T) {
	exerciseRecorder(t, store.NewMemory(10))
}

func TestMemory_DropsOldest(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory(3)

	var ids []string
	for i := range 5 {
		rec := newRecord(scoring.ModuleCrop, time.Now().Add(time.Duration(i)*time.Second))
		ids = append(ids, rec.ID)
		require.NoError(t, m.Insert(ctx, rec))
	}

	list, err := m.List(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[4], list[0].ID)
	assert.Equal(t, ids[2], list[2].ID)

	_, err = m.Get(ctx, ids[0])
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemory_LimitIsBounded(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory(0)
	for i := range store.MaxLimit + 5 {
		require.NoError(t, m.Insert(ctx, newRecord(scoring.ModuleCrop, time.Unix(int64(i), 0))))
	}
	list, err := m.List(ctx, store.Filter{Limit: 10_000})
	require.NoError(t, err)
	assert.Len(t, list, store.MaxLimit)

	list, err = m.List(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, store.DefaultLimit)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("UNIFAI_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("UNIFAI_TEST_DATABASE_URL not set")
	}

	db, err := platform.OpenDB(context.Background(), url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, platform.AutoMigrate(db))

	exerciseRecorder(t, store.NewPostgres(db))
}
