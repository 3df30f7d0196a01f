package search

import (
	"context"
	"database/sql"
	"testing"
	"time"

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

func createAlbum(t *testing.T, db *bun.DB, title string, notes *string) *models.Album {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	album := &models.Album{
		CreatedAt: now,
		UpdatedAt: now,
		Title:     title,
		MediaType: models.MediaTypeDefault,
		Notes:     notes,
	}
	_, err := db.NewInsert().Model(album).Exec(ctx)
	require.NoError(t, err)
	return album
}

func linkArtist(t *testing.T, db *bun.DB, albumID int, name string) {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	artist := &models.Artist{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err := db.NewInsert().Model(artist).Exec(ctx)
	require.NoError(t, err)

	link := &models.AlbumArtist{AlbumID: albumID, ArtistID: artist.ID, Role: models.ArtistRoleDefault}
	_, err = db.NewInsert().Model(link).Exec(ctx)
	require.NoError(t, err)
}

func linkGenre(t *testing.T, db *bun.DB, albumID int, name string) {
	t.Helper()
	ctx := context.Background()

	genre := &models.Genre{}
	err := db.NewSelect().Model(genre).Where("g.name = ? COLLATE NOCASE", name).Limit(1).Scan(ctx)
	if err != nil {
		now := time.Now()
		genre = &models.Genre{CreatedAt: now, UpdatedAt: now, Name: name}
		_, err = db.NewInsert().Model(genre).Exec(ctx)
		require.NoError(t, err)
	}

	link := &models.AlbumGenre{AlbumID: albumID, GenreID: genre.ID}
	_, err = db.NewInsert().Model(link).Exec(ctx)
	require.NoError(t, err)
}

func linkTag(t *testing.T, db *bun.DB, albumID int, name string) {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	tag := &models.Tag{CreatedAt: now, UpdatedAt: now, Name: name, Color: models.TagColorDefault}
	_, err := db.NewInsert().Model(tag).Exec(ctx)
	require.NoError(t, err)

	link := &models.AlbumTag{AlbumID: albumID, TagID: tag.ID}
	_, err = db.NewInsert().Model(link).Exec(ctx)
	require.NoError(t, err)
}

func addTrack(t *testing.T, db *bun.DB, albumID, position int, title string) {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	track := &models.Track{CreatedAt: now, UpdatedAt: now, AlbumID: albumID, Position: position, Title: title, DiscNo: 1}
	_, err := db.NewInsert().Model(track).Exec(ctx)
	require.NoError(t, err)
}

func albumIDs(albums []*models.Album) []int {
	ids := make([]int, len(albums))
	for i, album := range albums {
		ids[i] = album.ID
	}
	return ids
}

func TestSearch_ArtistChannel(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "OK Computer", nil)
	linkArtist(t, db, album.ID, "Radiohead")
	linkTag(t, db, album.ID, "Favoriet")
	require.NoError(t, svc.IndexAlbum(ctx, album))

	other := createAlbum(t, db, "Kind of Blue", nil)
	linkArtist(t, db, other.ID, "Miles Davis")
	require.NoError(t, svc.IndexAlbum(ctx, other))

	results, err := svc.Search(ctx, Options{Query: "radiohead", Filter: FilterArtist})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "OK Computer", results[0].Title)

	// results come back hydrated
	require.Len(t, results[0].Artists, 1)
	require.Equal(t, "Radiohead", results[0].Artists[0].Artist.Name)
	require.Len(t, results[0].Tags, 1)
	require.Equal(t, "Favoriet", results[0].Tags[0].Tag.Name)
}

func TestSearch_GenreBooleanAnd(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	both := createAlbum(t, db, "Both Genres", nil)
	linkGenre(t, db, both.ID, "Rock")
	linkGenre(t, db, both.ID, "Alternative")

	rockOnly := createAlbum(t, db, "Rock Only", nil)
	linkGenre(t, db, rockOnly.ID, "Rock")

	altOnly := createAlbum(t, db, "Alt Only", nil)
	linkGenre(t, db, altOnly.ID, "Alternative")

	results, err := svc.Search(ctx, Options{Query: "rock and alternative", Filter: FilterGenre})
	require.NoError(t, err)
	require.Equal(t, []int{both.ID}, albumIDs(results))

	// AND equals the intersection of the single-term result sets
	rockResults, err := svc.Search(ctx, Options{Query: "rock", Filter: FilterGenre})
	require.NoError(t, err)
	altResults, err := svc.Search(ctx, Options{Query: "alternative", Filter: FilterGenre})
	require.NoError(t, err)
	require.ElementsMatch(t, []int{both.ID, rockOnly.ID}, albumIDs(rockResults))
	require.ElementsMatch(t, []int{both.ID, altOnly.ID}, albumIDs(altResults))
}

func TestSearch_GenreBooleanOr(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	rock := createAlbum(t, db, "Rock Album", nil)
	linkGenre(t, db, rock.ID, "Rock")

	jazz := createAlbum(t, db, "Jazz Album", nil)
	linkGenre(t, db, jazz.ID, "Jazz")

	classical := createAlbum(t, db, "Classical Album", nil)
	linkGenre(t, db, classical.ID, "Classical")

	results, err := svc.Search(ctx, Options{Query: "rock or jazz", Filter: FilterGenre})
	require.NoError(t, err)
	require.ElementsMatch(t, []int{rock.ID, jazz.ID}, albumIDs(results))
}

func TestSearch_GenreBooleanNoMatches(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "Some Album", nil)
	linkGenre(t, db, album.ID, "Rock")

	results, err := svc.Search(ctx, Options{Query: "metal and alt", Filter: FilterGenre})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearch_NotesOnlyUnderAll(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	notes := "limited edition pressing"
	album := createAlbum(t, db, "Plain Title", &notes)
	require.NoError(t, svc.IndexAlbum(ctx, album))

	results, err := svc.Search(ctx, Options{Query: "limited", Filter: FilterAll})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, album.ID, results[0].ID)

	// a title-only filter excludes the notes channel
	results, err = svc.Search(ctx, Options{Query: "limited", Filter: FilterTitle})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearch_DeduplicatesAcrossChannels(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "Jazz Classics", nil)
	linkGenre(t, db, album.ID, "Jazz")
	addTrack(t, db, album.ID, 1, "Jazz Intro")
	require.NoError(t, svc.IndexAlbum(ctx, album))

	results, err := svc.Search(ctx, Options{Query: "jazz", Filter: FilterAll})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, album.ID, results[0].ID)
}

func TestSearch_TrackAndMediaTypeChannels(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "Singles", nil)
	addTrack(t, db, album.ID, 1, "Paranoid Android")

	results, err := svc.Search(ctx, Options{Query: "paranoid", Filter: FilterTrack})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))

	results, err = svc.Search(ctx, Options{Query: "cd", Filter: FilterMediaType})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))
}

func TestSearch_EmptyQueryReturnsEmpty(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	createAlbum(t, db, "Anything", nil)

	results, err := svc.Search(ctx, Options{Query: "   ", Filter: FilterAll})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSearch_SortByTitle(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	b := createAlbum(t, db, "banana", nil)
	a := createAlbum(t, db, "Apple", nil)
	linkGenre(t, db, a.ID, "Fruit")
	linkGenre(t, db, b.ID, "Fruit")

	results, err := svc.Search(ctx, Options{Query: "fruit", Filter: FilterGenre, SortBy: "title", Order: "asc"})
	require.NoError(t, err)
	require.Equal(t, []int{a.ID, b.ID}, albumIDs(results))
}

func TestIndex_DeleteRemovesAlbum(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "Disappearing Act", nil)
	require.NoError(t, svc.IndexAlbum(ctx, album))

	results, err := svc.Search(ctx, Options{Query: "disappearing", Filter: FilterTitle})
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, svc.DeleteFromAlbumIndex(ctx, album.ID))

	results, err = svc.Search(ctx, Options{Query: "disappearing", Filter: FilterTitle})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestRebuildIndex(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "Never Indexed", nil)

	results, err := svc.Search(ctx, Options{Query: "never", Filter: FilterTitle})
	require.NoError(t, err)
	require.Empty(t, results)

	require.NoError(t, svc.RebuildIndex(ctx))

	results, err = svc.Search(ctx, Options{Query: "never", Filter: FilterTitle})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))
}

func TestSearch_TitleMidWordSubstring(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album := createAlbum(t, db, "OK Computer", nil)
	require.NoError(t, svc.IndexAlbum(ctx, album))

	// a token prefix matches through the index
	results, err := svc.Search(ctx, Options{Query: "comp", Filter: FilterTitle})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))

	// a fragment starting mid-word matches too
	results, err = svc.Search(ctx, Options{Query: "omputer", Filter: FilterTitle})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))
}

func TestSearch_NotesMidWordSubstring(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	notes := "remastered pressing"
	album := createAlbum(t, db, "Plain Title", &notes)
	require.NoError(t, svc.IndexAlbum(ctx, album))

	results, err := svc.Search(ctx, Options{Query: "astered", Filter: FilterAll})
	require.NoError(t, err)
	require.Equal(t, []int{album.ID}, albumIDs(results))
}

func TestSearch_LikeMetacharactersMatchLiterally(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	plain := createAlbum(t, db, "Plain", nil)
	linkArtist(t, db, plain.ID, "Radiohead")

	literal := createAlbum(t, db, "Literal", nil)
	linkArtist(t, db, literal.ID, "100% Dynamite")

	// "%" only matches artists containing a literal percent sign
	results, err := svc.Search(ctx, Options{Query: "%", Filter: FilterArtist})
	require.NoError(t, err)
	require.Equal(t, []int{literal.ID}, albumIDs(results))

	// "_" is not a single-character wildcard
	results, err = svc.Search(ctx, Options{Query: "_", Filter: FilterArtist})
	require.NoError(t, err)
	require.Empty(t, results)
}
