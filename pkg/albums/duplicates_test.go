package albums

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindDuplicates_Barcode(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:  "Barcoded",
		UPCEAN: strptr("5099969944123"),
	})
	require.NoError(t, err)

	_, err = svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:  "Different Barcode",
		UPCEAN: strptr("0000000000000"),
	})
	require.NoError(t, err)

	// barcode equality is definitive regardless of title or artists
	duplicates, err := svc.FindDuplicates(ctx, "Totally Different Title", nil, "5099969944123")
	require.NoError(t, err)
	require.Len(t, duplicates, 1)
	require.Equal(t, album.ID, duplicates[0].ID)
}

func TestFindDuplicates_TitleAndArtistMultiset(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "Collaboration",
		ArtistNames: []string{"A", "B"},
	})
	require.NoError(t, err)

	// order-independent exact multiset match
	duplicates, err := svc.FindDuplicates(ctx, "collaboration", []string{"B", "A"}, "")
	require.NoError(t, err)
	require.Len(t, duplicates, 1)
	require.Equal(t, album.ID, duplicates[0].ID)

	// a subset of the artist list is not a duplicate
	duplicates, err = svc.FindDuplicates(ctx, "Collaboration", []string{"A"}, "")
	require.NoError(t, err)
	require.Empty(t, duplicates)

	// a superset isn't either
	duplicates, err = svc.FindDuplicates(ctx, "Collaboration", []string{"A", "B", "C"}, "")
	require.NoError(t, err)
	require.Empty(t, duplicates)

	// substring titles don't match, only full equality
	duplicates, err = svc.FindDuplicates(ctx, "Collab", []string{"A", "B"}, "")
	require.NoError(t, err)
	require.Empty(t, duplicates)
}

func TestFindDuplicates_UnionFirstSeen(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	album, err := svc.CreateAlbum(ctx, CreateAlbumPayload{
		Title:       "Same Release",
		UPCEAN:      strptr("111222333"),
		ArtistNames: []string{"Solo"},
	})
	require.NoError(t, err)

	// matches both passes but appears once
	duplicates, err := svc.FindDuplicates(ctx, "Same Release", []string{"Solo"}, "111222333")
	require.NoError(t, err)
	require.Len(t, duplicates, 1)
	require.Equal(t, album.ID, duplicates[0].ID)
}

func TestFindDuplicates_NoCriteria(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	_, err := svc.CreateAlbum(ctx, CreateAlbumPayload{Title: "Whatever"})
	require.NoError(t, err)

	// title without artists runs neither pass
	duplicates, err := svc.FindDuplicates(ctx, "Whatever", nil, "")
	require.NoError(t, err)
	require.Empty(t, duplicates)
}
