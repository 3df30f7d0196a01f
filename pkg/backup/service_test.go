package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/migrations"
	"github.com/discvault/discvault/pkg/models"
	"github.com/discvault/discvault/pkg/search"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	coverDir := filepath.Join(t.TempDir(), "covers")
	require.NoError(t, os.MkdirAll(coverDir, 0755))
	return &config.Config{CoverDir: coverDir}
}

func createAlbum(t *testing.T, db *bun.DB, title string) *models.Album {
	t.Helper()
	album := &models.Album{Title: title, MediaType: models.MediaTypeDefault}
	_, err := db.NewInsert().Model(album).Exec(context.Background())
	require.NoError(t, err)
	return album
}

func TestWriteArchive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	createAlbum(t, db, "Exported One")
	createAlbum(t, db, "Exported Two")

	coverPath := filepath.Join(cfg.CoverDir, "album_1.jpg")
	require.NoError(t, os.WriteFile(coverPath, []byte("jpeg bytes"), 0644))

	var buf bytes.Buffer
	require.NoError(t, svc.WriteArchive(ctx, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	entries := map[string]*zip.File{}
	for _, entry := range zr.File {
		entries[entry.Name] = entry
	}
	require.Contains(t, entries, "manifest.json")
	require.Contains(t, entries, "catalog.db")
	require.Contains(t, entries, "covers/album_1.jpg")

	src, err := entries["manifest.json"].Open()
	require.NoError(t, err)
	defer src.Close()

	manifest := &Manifest{}
	require.NoError(t, json.NewDecoder(src).Decode(manifest))
	require.Equal(t, 1, manifest.Version)
	require.Equal(t, 2, manifest.AlbumCount)
	require.False(t, manifest.ExportedAt.IsZero())

	// the snapshot is a real database, not an empty placeholder
	require.Greater(t, entries["catalog.db"].UncompressedSize64, uint64(0))
}

func TestRestoreArchive_Roundtrip(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	album := createAlbum(t, db, "Survivor")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CoverDir, "album_1.jpg"), []byte("original cover"), 0644))

	var buf bytes.Buffer
	require.NoError(t, svc.WriteArchive(ctx, &buf))

	// mutate the live collection after the export
	_, err := db.NewDelete().Model(album).Where("id = ?", album.ID).Exec(ctx)
	require.NoError(t, err)
	createAlbum(t, db, "Interloper")
	require.NoError(t, os.RemoveAll(cfg.CoverDir))

	manifest, err := svc.RestoreArchive(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 1, manifest.AlbumCount)

	restored := []*models.Album{}
	require.NoError(t, db.NewSelect().Model(&restored).Scan(ctx))
	require.Len(t, restored, 1)
	require.Equal(t, "Survivor", restored[0].Title)

	// the search index is rebuilt from the restored store
	results, err := search.NewService(db).Search(ctx, search.Options{Query: "survivor", Filter: search.FilterTitle})
	require.NoError(t, err)
	require.Len(t, results, 1)

	contents, err := os.ReadFile(filepath.Join(cfg.CoverDir, "album_1.jpg"))
	require.NoError(t, err)
	require.Equal(t, []byte("original cover"), contents)
}

func TestRestoreArchive_RejectsGarbage(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	_, err := svc.RestoreArchive(context.Background(), bytes.NewReader([]byte("not a zip")))
	require.ErrorIs(t, err, errcodes.BadRequest("Uploaded file is not a valid zip archive."))
}

func TestRestoreArchive_RejectsMissingManifest(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("catalog.db")
	require.NoError(t, err)
	_, err = entry.Write([]byte("stub"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.RestoreArchive(context.Background(), bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errcodes.BadRequest("Archive is missing its manifest."))
}

func TestRestoreArchive_RejectsUnsupportedVersion(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("manifest.json")
	require.NoError(t, err)
	_, err = entry.Write([]byte(`{"version": 99, "album_count": 0}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.RestoreArchive(context.Background(), bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errcodes.BadRequest("Archive manifest version is not supported."))
}

func TestRestoreArchive_RejectsEscapingPaths(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := NewService(db, cfg)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = entry.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.RestoreArchive(context.Background(), bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, errcodes.BadRequest("Archive contains an invalid entry path."))
}
