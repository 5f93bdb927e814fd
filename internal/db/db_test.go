package db

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfim/fandomap/internal/catalog"
	"github.com/cfim/fandomap/internal/fandom"
	"github.com/cfim/fandomap/internal/logging"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err, "should open database without error")
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.Equal(t, dbPath, db.Path())
}

func TestSchemaVersion(t *testing.T) {
	db := openTestDB(t)

	var version int
	err := db.Conn().QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version, "schema version should be 2")
}

func TestTablesExist(t *testing.T) {
	db := openTestDB(t)

	tables := []string{
		"schema_version",
		"fandoms", "fandom_aliases", "fandom_edges", "fandom_sellers",
		"circles", "circle_fandoms", "stands", "stand_attendance",
	}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var rows int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	assert.Equal(t, 2, rows, "migrations run once")
}

func extractFixture(t *testing.T) *catalog.Result {
	t.Helper()
	reg, err := fandom.NewRegistryFromRecords([]fandom.Record{
		{ID: "hsr", DisplayName: "Honkai Star Rail", Abbreviation: []string{"hsr"}, RegexStr: `star\s*rail`},
	}, true)
	require.NoError(t, err)
	engine := fandom.NewEngine(reg, fandom.DefaultConfig(), logging.New(logging.Config{Level: "error"}, io.Discard))

	circles := []catalog.Circle{
		{ID: "1", UserID: "u1", Name: "One", CircleCode: "B-1ab", Fandom: "Idol (JKT48, 22/7)", OtherFandom: "-"},
		{ID: "2", UserID: "u2", Name: "Two", CircleCode: "AB-2 (SAT)", Fandom: "Honkai Star Rale", OtherFandom: "idol"},
	}
	res, err := catalog.Extract(context.Background(), circles, engine, catalog.Options{
		Logger: logging.New(logging.Config{Level: "error"}, io.Discard),
	})
	require.NoError(t, err)
	return res
}

func TestSaveAndLoadFandoms(t *testing.T) {
	db := openTestDB(t)
	res := extractFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, res))

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Fandoms: 4, Circles: 2, Stands: 3}, counts)

	loaded, err := db.LoadFandoms(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(res.Fandoms))

	for i, want := range res.Fandoms {
		got := loaded[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Code, got.Code)
		assert.Equal(t, want.DisplayName, got.DisplayName)
		assert.Equal(t, want.RegexStr, got.RegexStr)
		assert.Equal(t, want.Curated, got.Curated)
		assert.Equal(t, want.Abbreviation, got.Abbreviation)
		assert.Equal(t, want.CommonTypo, got.CommonTypo)
		assert.Equal(t, want.SellerIDs, got.SellerIDs)
		assert.ElementsMatch(t, want.SubsetIDs, got.SubsetIDs)
		assert.ElementsMatch(t, want.SupersetIDs, got.SupersetIDs)
	}

	reg, err := fandom.NewRegistryFromRecords(loaded, false)
	require.NoError(t, err)
	assert.NoError(t, reg.Validate())
}

func TestSaveReplacesSnapshot(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, extractFixture(t)))
	require.NoError(t, db.Save(ctx, &catalog.Result{}))

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	loaded, err := db.LoadFandoms(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSaveRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Save(ctx, extractFixture(t)))

	// A circle linked to an unknown fandom violates a foreign key.
	bad := &catalog.Result{
		Circles: []catalog.CircleState{{UUID: "u9", ID: 9, DisplayName: "Bad", FandomUUIDs: []string{"ghost"}}},
	}
	assert.Error(t, db.Save(ctx, bad))

	counts, err := db.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, counts.Fandoms, "previous snapshot kept")
}

func TestCircleFandoms(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	res := extractFixture(t)
	require.NoError(t, db.Save(ctx, res))

	ids, err := db.CircleFandoms(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, res.Circles[1].FandomUUIDs, ids)

	ids, err = db.CircleFandoms(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStandAttendanceStored(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Save(ctx, extractFixture(t)))

	var n int
	err := db.Conn().QueryRow(
		"SELECT COUNT(*) FROM stand_attendance WHERE stand_code = ? AND day = ?", "B-1a", 2,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var standType string
	err = db.Conn().QueryRow("SELECT stand_type FROM stands WHERE code = ?", "Ab-2").Scan(&standType)
	require.NoError(t, err)
	assert.Equal(t, "circlepro", standType)
}
