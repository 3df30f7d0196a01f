package albums

import (
	"context"
	"database/sql"
	"testing"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/migrations"
	"github.com/discvault/discvault/pkg/models"
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

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func createTag(t *testing.T, db *bun.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: models.TagColorDefault}
	_, err := db.NewInsert().Model(tag).Exec(context.Background())
	require.NoError(t, err)
	return tag
}

func TestCreateAlbum(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	favoriet := createTag(t, db, "Favoriet")

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "OK Computer",
		Year:        intptr(1997),
		UPCEAN:      strptr("724385522925"),
		ArtistNames: []string{"Radiohead"},
		GenreNames:  []string{"Alternative", "Rock"},
		TagIDs:      []int{favoriet.ID},
		Tracks: []TrackSpec{
			{Title: "Airbag", Duration: strptr("4:44")},
			{Title: "Paranoid Android", Duration: strptr("6:23")},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "OK Computer", album.Title)
	require.Equal(t, 1997, *album.Year)
	require.Equal(t, models.MediaTypeDefault, album.MediaType)
	require.Equal(t, []string{"Radiohead"}, album.ArtistNames())
	require.Len(t, album.Genres, 2)
	require.Len(t, album.Tags, 1)
	require.Equal(t, "Favoriet", album.Tags[0].Tag.Name)

	require.Len(t, album.Tracks, 2)
	require.Equal(t, 1, album.Tracks[0].Position)
	require.Equal(t, "Airbag", album.Tracks[0].Title)
	require.Equal(t, 2, album.Tracks[1].Position)
	require.Equal(t, 1, album.Tracks[1].DiscNo)
}

func TestCreateAlbum_FindOrCreateReusesNames(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "First",
		ArtistNames: []string{"Radiohead"},
		GenreNames:  []string{"Rock"},
	})
	require.NoError(t, err)

	_, err = svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "Second",
		ArtistNames: []string{"radiohead"},
		GenreNames:  []string{"ROCK"},
	})
	require.NoError(t, err)

	artistCount, err := db.NewSelect().Model((*models.Artist)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, artistCount)

	genreCount, err := db.NewSelect().Model((*models.Genre)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, genreCount)
}

func TestCreateAlbum_UnknownTagFails(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:  "No Such Tag",
		TagIDs: []int{9999},
	})
	require.ErrorIs(t, err, errcodes.NotFound("Tag"))

	// nothing persists from the failed unit of work
	count, err := db.NewSelect().Model((*models.Album)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestUpdateAlbum_PartialSemantics(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "Original",
		Year:        intptr(1999),
		Notes:       strptr("keep me"),
		ArtistNames: []string{"Someone"},
	})
	require.NoError(t, err)

	// absent fields stay untouched
	updated, err := svc.UpdateAlbum(ctx, album.ID, UpdateAlbumPayload{
		Title: strptr("Renamed"),
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, 1999, *updated.Year)
	require.Equal(t, "keep me", *updated.Notes)
	require.Equal(t, []string{"Someone"}, updated.ArtistNames())

	// zero-value pointers clear scalars
	updated, err = svc.UpdateAlbum(ctx, album.ID, UpdateAlbumPayload{
		Year:  intptr(0),
		Notes: strptr(""),
	})
	require.NoError(t, err)
	require.Nil(t, updated.Year)
	require.Nil(t, updated.Notes)

	// a non-nil empty slice clears the association set
	updated, err = svc.UpdateAlbum(ctx, album.ID, UpdateAlbumPayload{
		ArtistNames: []string{},
	})
	require.NoError(t, err)
	require.Empty(t, updated.Artists)
}

func TestUpdateAlbum_TracksWhollyReplaced(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title: "With Tracks",
		Tracks: []TrackSpec{
			{Title: "Old One"},
			{Title: "Old Two"},
			{Title: "Old Three"},
		},
	})
	require.NoError(t, err)
	require.Len(t, album.Tracks, 3)

	updated, err := svc.UpdateAlbum(ctx, album.ID, UpdateAlbumPayload{
		Tracks: []TrackSpec{
			{Position: intptr(1), Title: "New One"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Tracks, 1)
	require.Equal(t, "New One", updated.Tracks[0].Title)

	trackCount, err := db.NewSelect().Model((*models.Track)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, trackCount)
}

func TestUpdateAlbum_BlankTrackTitleDefaults(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title: "Untitled Tracks",
		Tracks: []TrackSpec{
			{Position: intptr(7), Title: "   "},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Track 7", album.Tracks[0].Title)
}

func TestUpdateAlbum_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.UpdateAlbum(ctx, 12345, UpdateAlbumPayload{Title: strptr("Nope")})
	require.ErrorIs(t, err, errcodes.NotFound("Album"))
}

func TestDeleteAlbum_RemovesLinksAndTracks(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	tag := createTag(t, db, "Keeper")

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "Doomed",
		ArtistNames: []string{"Gone"},
		GenreNames:  []string{"Dust"},
		TagIDs:      []int{tag.ID},
		Tracks:      []TrackSpec{{Title: "Last Song"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAlbum(ctx, album.ID))

	_, err = svc.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &album.ID})
	require.ErrorIs(t, err, errcodes.NotFound("Album"))

	for _, model := range []interface{}{
		(*models.AlbumArtist)(nil),
		(*models.AlbumGenre)(nil),
		(*models.AlbumTag)(nil),
		(*models.Track)(nil),
	} {
		count, err := db.NewSelect().Model(model).Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 0, count)
	}

	// the tag itself survives album deletion
	tagCount, err := db.NewSelect().Model((*models.Tag)(nil)).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, tagCount)
}

func TestListAlbums_Pagination(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		_, err := svc.CreateAlbum(ctx, CreateAlbumPayload{Title: title})
		require.NoError(t, err)
	}

	albums, total, err := svc.ListAlbums(ctx, ListAlbumsOptions{
		Limit:  intptr(2),
		Offset: intptr(1),
		SortBy: "title",
		Order:  "asc",
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, albums, 2)
	require.Equal(t, "Beta", albums[0].Title)
	require.Equal(t, "Gamma", albums[1].Title)
}
