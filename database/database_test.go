package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhecker/threading/database"
)

func openDatabase(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func TestDatabase_Records(t *testing.T) {
	t.Parallel()

	db := openDatabase(t)
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, rec := range []*database.Record{
		{RunID: "b", Scenario: "lock", Primitive: "lock", StartedAt: start.Add(time.Minute), Operations: 20},
		{RunID: "a", Scenario: "lock", Primitive: "lock", StartedAt: start, Operations: 10},
		{RunID: "c", Scenario: "lock-extra", Primitive: "lock", StartedAt: start, Failure: "boom"},
	} {
		require.NoError(t, db.PutRecord(rec), "record #%d", i)
	}

	records, err := db.Records("lock")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].RunID)
	assert.Equal(t, "b", records[1].RunID)
	assert.True(t, records[0].StartedAt.Equal(start))

	all, err := db.Records("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := db.Records("rwlock")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDatabase_LatestRecord(t *testing.T) {
	t.Parallel()

	db := openDatabase(t)

	rec, err := db.LatestRecord("event")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, db.PutRecord(&database.Record{RunID: "1", Scenario: "event", StartedAt: time.Now()}))
	require.NoError(t, db.PutRecord(&database.Record{RunID: "2", Scenario: "event", StartedAt: time.Now(), Failure: "hung"}))

	rec, err = db.LatestRecord("event")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "2", rec.RunID)
	assert.False(t, rec.Passed())
}
