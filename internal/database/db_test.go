package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasteal.db")

	db, err := NewDB(path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var count int
	err = db.SQL.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'plan_items'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("MigrationsAreIdempotent", func(t *testing.T) {
		require.NoError(t, RunMigrations(path, zap.NewNop()))
	})

	t.Run("ForeignKeysEnabled", func(t *testing.T) {
		var on int
		require.NoError(t, db.SQL.QueryRow(`PRAGMA foreign_keys`).Scan(&on))
		assert.Equal(t, 1, on)
	})
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 4, 5, 6, 7, 8, time.FixedZone("ICT", 7*3600))

	parsed, err := ParseTime(FormatTime(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func TestFormatTimeSortsChronologically(t *testing.T) {
	base := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	whole := FormatTime(base)
	fraction := FormatTime(base.Add(500 * time.Millisecond))
	next := FormatTime(base.Add(time.Second))

	assert.Equal(t, "2024-03-04T05:06:07.000000000Z", whole)
	assert.Less(t, whole, fraction)
	assert.Less(t, fraction, next)
}
