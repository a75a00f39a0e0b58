package indexdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oicoach.dev/internal/persistence/snapshot"
)

func testSnap(week int, budget int) snapshot.SeasonV1 {
	return snapshot.SeasonV1{
		Seed:      1337,
		Week:      week,
		Budget:    budget,
		Phase:     "active",
		EndReason: "",
		Students:  []snapshot.StudentV1{{Name: "林小羽"}, {Name: "陈默"}},
	}
}

func TestSnapshotIndexRoundTrip(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.RecordSnapshot(testSnap(8, 400000), "/data/8.snap.zst"))
	require.NoError(t, idx.RecordSnapshot(testSnap(16, 310000), "/data/16.snap.zst"))

	row, ok, err := idx.LatestSnapshot(1337)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 16, row.Week)
	assert.Equal(t, "/data/16.snap.zst", row.Path)
	assert.Equal(t, 310000, row.Budget)
	assert.Equal(t, 2, row.Students)

	_, ok, err = idx.LatestSnapshot(999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeasonIndex(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	defer idx.Close()

	snap := testSnap(104, 120000)
	snap.Phase = "ended"
	snap.EndReason = "season complete"
	require.NoError(t, idx.RecordSeason(snap, 21.5, "/data/archives/season_1337_104"))

	rows, err := idx.ListSeasons()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1337), rows[0].Seed)
	assert.Equal(t, 104, rows[0].EndWeek)
	assert.Equal(t, "season complete", rows[0].Reason)
	assert.Equal(t, 21.5, rows[0].Score)
	assert.NotEmpty(t, rows[0].RecordedAt)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	require.Error(t, err)
}
