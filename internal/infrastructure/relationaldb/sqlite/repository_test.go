package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/ports"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

var _ ports.CorrectionStore = (*Repository)(nil)

// setupTestRepo creates an in-memory SQLite repository for testing.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.EnsureSchema(context.Background())
	require.NoError(t, err)

	return repo
}

func storedCorrection(t *testing.T, id string, source, target entities.TimeScale, reference string, coefficients ...float64) *entities.StoredCorrection {
	t.Helper()
	ref, err := entities.ParseEpochIn(reference, source)
	require.NoError(t, err)
	poly, err := entities.NewPolynomial(coefficients...)
	require.NoError(t, err)
	c, err := entities.NewTimeCorrection(source, target, ref, poly)
	require.NoError(t, err)
	return &entities.StoredCorrection{
		ID:         id,
		Correction: c,
		Origin:     "test",
		CreatedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("success with memory database", func(t *testing.T) {
		repo, err := NewRepository(config.SQLiteConfig{Path: ":memory:"})
		require.NoError(t, err)
		defer repo.Close()
		assert.NotNil(t, repo)
	})

	t.Run("error with empty path", func(t *testing.T) {
		_, err := NewRepository(config.SQLiteConfig{Path: ""})
		require.Error(t, err)
	})
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo := setupTestRepo(t)

	for _, table := range []string{"corrections", "audit_log"} {
		var count int
		err := repo.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestRepository_EnsureSchema_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	err := repo.EnsureSchema(context.Background())
	require.NoError(t, err)
}

func TestRepository_Corrections(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	first := storedCorrection(t, "gst-gps", entities.GST, entities.GPST, "2023-06-15T00:00:00.5", 1.5e-9, -2e-14)
	first.Correction = first.Correction.WithValidity(entities.Day)
	second := storedCorrection(t, "utc-gps", entities.UTC, entities.GPST, "2020-01-01", 18)

	require.NoError(t, repo.SaveCorrection(ctx, first))
	require.NoError(t, repo.SaveCorrection(ctx, second))

	t.Run("find round trips every field", func(t *testing.T) {
		found, err := repo.FindCorrection(ctx, "gst-gps")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, first.Correction.Equal(found.Correction), "got %s", found.Correction)
		assert.Equal(t, entities.Day, found.Correction.Validity())
		assert.Equal(t, "2023-06-15T00:00:00.500000000 GST", found.Correction.Reference().String())
		assert.Equal(t, "test", found.Origin)
		assert.True(t, first.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		found, err := repo.FindCorrection(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("list keeps insertion order across upserts", func(t *testing.T) {
		updated := storedCorrection(t, "gst-gps", entities.GST, entities.GPST, "2023-06-16", 2e-9)
		require.NoError(t, repo.SaveCorrection(ctx, updated))

		list, err := repo.ListCorrections(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "gst-gps", list[0].ID)
		assert.Equal(t, []float64{2e-9}, list[0].Correction.Polynomial().Coefficients())
		assert.Equal(t, "utc-gps", list[1].ID)
	})

	t.Run("exists by ids", func(t *testing.T) {
		exists, err := repo.ExistsByIDs(ctx, []string{"utc-gps", "missing"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"utc-gps": true}, exists)

		exists, err = repo.ExistsByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, exists)
	})

	t.Run("count and delete", func(t *testing.T) {
		count, err := repo.CountCorrections(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		require.NoError(t, repo.DeleteCorrection(ctx, "utc-gps"))
		require.NoError(t, repo.DeleteCorrection(ctx, "utc-gps"))

		count, err = repo.CountCorrections(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestRepository_DeleteCorrectionsBefore(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCorrection(ctx, storedCorrection(t, "a", entities.UTC, entities.GPST, "2020-01-01", 1)))
	require.NoError(t, repo.SaveCorrection(ctx, storedCorrection(t, "b", entities.BDT, entities.GPST, "2020-01-10T00:00:00.25", 1)))
	require.NoError(t, repo.SaveCorrection(ctx, storedCorrection(t, "c", entities.GST, entities.UTC, "2020-01-20", 1)))

	// The cutoff is compared by reading, so a GPST instant prunes BDT references.
	cutoff, err := entities.ParseEpoch("2020-01-10T00:00:00.5 GPST")
	require.NoError(t, err)

	removed, err := repo.DeleteCorrectionsBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	list, err := repo.ListCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)
}

func TestRepository_AuditLog(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	t.Run("log action", func(t *testing.T) {
		require.NoError(t, repo.LogAction(ctx, entities.AuditAdd, "utc-gps", map[string]any{"origin": "manual"}))
		require.NoError(t, repo.LogAction(ctx, entities.AuditPrune, "", map[string]any{"removed": 3}))
		require.NoError(t, repo.LogAction(ctx, entities.AuditRemove, "utc-gps", nil))
	})

	t.Run("newest first", func(t *testing.T) {
		entries, err := repo.FindAuditLog(ctx, 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, entities.AuditRemove, entries[0].Action)
		assert.Equal(t, "utc-gps", entries[0].CorrectionID)
		assert.Nil(t, entries[0].Details)

		assert.Equal(t, entities.AuditPrune, entries[1].Action)
		assert.Empty(t, entries[1].CorrectionID)
		assert.Equal(t, float64(3), entries[1].Details["removed"])

		assert.Equal(t, "manual", entries[2].Details["origin"])
		assert.False(t, entries[2].CreatedAt.IsZero())
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := repo.FindAuditLog(ctx, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, entities.AuditRemove, entries[0].Action)
	})
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.db")
	ctx := context.Background()

	repo, err := NewRepository(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.SaveCorrection(ctx, storedCorrection(t, "utc-gps", entities.UTC, entities.GPST, "2020-01-01", 18)))
	require.NoError(t, repo.Close())

	repo, err = NewRepository(config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer repo.Close()

	count, err := repo.CountCorrections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRepository_Path(t *testing.T) {
	repo := setupTestRepo(t)
	assert.Equal(t, ":memory:", repo.Path())
}
