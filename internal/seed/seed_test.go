package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammorganparry/circle/internal/models"
	"github.com/iammorganparry/circle/internal/seed"
	"github.com/iammorganparry/circle/internal/store"
)

func openStores(t *testing.T) *store.Stores {
	t.Helper()
	db, err := store.Open(store.DriverPure, filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewStores(db)
}

func TestDefaultDataset(t *testing.T) {
	d, err := seed.Default()
	require.NoError(t, err)

	require.Len(t, d.Cohorts, 2)
	assert.Equal(t, "Spring 2024 Healing Circle", d.Cohorts[0].Name)
	assert.Len(t, d.Cohorts[0].Participants, 6)
	assert.Len(t, d.Cohorts[1].Participants, 3)
	assert.Len(t, d.Cohorts[0].Schedule, 3)
	assert.Empty(t, d.Cohorts[1].Schedule)
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStores(t)
	d, err := seed.Default()
	require.NoError(t, err)

	applied, err := seed.Apply(ctx, s, d, time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = seed.Apply(ctx, s, d, time.Unix(1_700_000_100, 0))
	require.NoError(t, err)
	assert.False(t, applied)

	n, err := s.Participants.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	sched, err := s.Schedule.List(ctx, "cohort-001")
	require.NoError(t, err)
	require.Len(t, sched, 4)
	assert.Equal(t, "2024-03-27T18:00", sched[0].DateTime)
	assert.Equal(t, "https://zoom.us/j/123456", sched[2].ZoomLink)
	assert.Empty(t, sched[3].DateTime)

	intake, err := s.Intakes.Get(ctx, models.DemoUserID)
	require.NoError(t, err)
	require.NotNil(t, intake)
	assert.Equal(t, 8, intake.BaselineConnection)
	assert.Equal(t, 2, intake.BaselineStress)
	assert.Equal(t, 9, intake.BaselineEfficacy)

	quotes, err := s.Worksheets.ListConsented(ctx, 5)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Heritage is my anchor.", quotes[0].Reflection())
	assert.Equal(t, "Found safety in sisterhood.", quotes[1].Reflection())
}

func TestLoad(t *testing.T) {
	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
cohorts:
  - id: c-x
    name: Autumn Circle
    participants:
      - {id: p1, name: Ada, email: ada@example.com, status: Active}
`), 0o644))
		d, err := seed.Load(path)
		require.NoError(t, err)
		require.Len(t, d.Cohorts, 1)
		assert.Equal(t, "Ada", d.Cohorts[0].Participants[0].Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := seed.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := seed.Parse([]byte(`
cohorts:
  - id: c
    name: n
    participants:
      - {id: p, name: x, status: Sleeping}
`))
		require.Error(t, err)
	})
}
