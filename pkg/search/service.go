package search

import (
	"context"
	"strings"

	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// searchResultCap bounds the hydration query; the per-channel queries are not
// paginated, so the final fetch caps the union instead.
const searchResultCap = 1000

const (
	FilterAll       = "all"
	FilterTitle     = "title"
	FilterArtist    = "artist"
	FilterGenre     = "genre"
	FilterTag       = "tag"
	FilterTrack     = "track"
	FilterMediaType = "media_type"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

type Options struct {
	Query  string
	Filter string
	SortBy string
	Order  string
}

// Search fans the query out across the channels selected by the filter,
// merges the matching album ids (dedup by id, first occurrence wins), and
// re-fetches the deduplicated set fully hydrated in the requested order.
// Notes are only searched under the "all" filter; they are not individually
// selectable.
func (svc *Service) Search(ctx context.Context, opts Options) ([]*models.Album, error) {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	if query == "" {
		return []*models.Album{}, nil
	}

	filter := opts.Filter
	if filter == "" {
		filter = FilterAll
	}

	var merged []int
	seen := map[int]bool{}
	merge := func(ids []int) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}

	type channel struct {
		name string
		run  func(context.Context, string) ([]int, error)
	}

	// Channel declaration order determines merge order.
	channels := []channel{
		{FilterTitle, svc.searchTitles},
		{FilterArtist, svc.searchArtists},
		{"notes", svc.searchNotes},
		{FilterGenre, svc.searchGenres},
		{FilterTag, svc.searchTags},
		{FilterTrack, svc.searchTracks},
		{FilterMediaType, svc.searchMediaTypes},
	}

	for _, ch := range channels {
		if filter != FilterAll && filter != ch.name {
			continue
		}
		ids, err := ch.run(ctx, query)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		merge(ids)
	}

	if len(merged) == 0 {
		return []*models.Album{}, nil
	}

	return svc.fetchAlbums(ctx, merged, opts.SortBy, opts.Order)
}

func (svc *Service) searchTitles(ctx context.Context, query string) ([]int, error) {
	return svc.searchText(ctx, "title", query)
}

func (svc *Service) searchNotes(ctx context.Context, query string) ([]int, error) {
	return svc.searchText(ctx, "notes", query)
}

// searchText matches an indexed text column two ways: a token-prefix query
// against the FTS index, ranked first, then a substring scan of the same
// column for fragments that start mid-word. Both run against albums_fts, so
// an album absent from the index stays absent from results.
func (svc *Service) searchText(ctx context.Context, column, query string) ([]int, error) {
	ids, err := svc.searchIndex(ctx, column, query)
	if err != nil {
		return nil, err
	}

	substringIDs := []int{}
	err = svc.db.NewSelect().
		TableExpr("albums_fts").
		ColumnExpr("album_id").
		Where("LOWER("+column+") LIKE ? ESCAPE '\\'", LikePattern(query)).
		Scan(ctx, &substringIDs)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range substringIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (svc *Service) searchIndex(ctx context.Context, column, query string) ([]int, error) {
	ftsQuery := BuildColumnPrefixQuery(column, query)
	if ftsQuery == "" {
		return nil, nil
	}

	ids := []int{}
	err := svc.db.NewSelect().
		TableExpr("albums_fts").
		ColumnExpr("album_id").
		Where("albums_fts MATCH ?", ftsQuery).
		Order("rank").
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) searchArtists(ctx context.Context, query string) ([]int, error) {
	ids := []int{}
	err := svc.db.NewSelect().
		TableExpr("album_artists aa").
		ColumnExpr("DISTINCT aa.album_id").
		Join("JOIN artists ar ON ar.id = aa.artist_id").
		Where("LOWER(ar.name) LIKE ? ESCAPE '\\'", LikePattern(query)).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) searchGenres(ctx context.Context, query string) ([]int, error) {
	return svc.searchLinkedNames(ctx, query, "genres", "album_genres", "genre_id")
}

func (svc *Service) searchTags(ctx context.Context, query string) ([]int, error) {
	return svc.searchLinkedNames(ctx, query, "tags", "album_tags", "tag_id")
}

// searchLinkedNames resolves the genre/tag boolean grammar. AND intersects
// the per-term matching-album-id sets; OR and single-term queries run as one
// query with OR'd LIKE patterns.
func (svc *Service) searchLinkedNames(ctx context.Context, query, nameTable, linkTable, fkColumn string) ([]int, error) {
	tq := ParseTerms(query)
	if len(tq.Terms) == 0 {
		return nil, nil
	}

	if tq.Op != TermAnd {
		return svc.matchLinkedNames(ctx, nameTable, linkTable, fkColumn, tq.Terms)
	}

	var result []int
	for i, term := range tq.Terms {
		ids, err := svc.matchLinkedNames(ctx, nameTable, linkTable, fkColumn, []string{term})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if i == 0 {
			result = ids
			continue
		}
		matched := make(map[int]bool, len(ids))
		for _, id := range ids {
			matched[id] = true
		}
		kept := result[:0]
		for _, id := range result {
			if matched[id] {
				kept = append(kept, id)
			}
		}
		result = kept
		if len(result) == 0 {
			break
		}
	}
	return result, nil
}

func (svc *Service) matchLinkedNames(ctx context.Context, nameTable, linkTable, fkColumn string, terms []string) ([]int, error) {
	q := svc.db.NewSelect().
		TableExpr(linkTable+" lk").
		ColumnExpr("DISTINCT lk.album_id").
		Join("JOIN " + nameTable + " n ON n.id = lk." + fkColumn)

	q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, term := range terms {
			q = q.WhereOr("LOWER(n.name) LIKE ? ESCAPE '\\'", LikePattern(term))
		}
		return q
	})

	ids := []int{}
	err := q.Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) searchTracks(ctx context.Context, query string) ([]int, error) {
	ids := []int{}
	err := svc.db.NewSelect().
		TableExpr("tracks tr").
		ColumnExpr("DISTINCT tr.album_id").
		Where("LOWER(tr.title) LIKE ? ESCAPE '\\'", LikePattern(query)).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) searchMediaTypes(ctx context.Context, query string) ([]int, error) {
	ids := []int{}
	err := svc.db.NewSelect().
		TableExpr("albums a").
		ColumnExpr("a.id").
		Where("LOWER(a.media_type) LIKE ? ESCAPE '\\'", LikePattern(query)).
		Scan(ctx, &ids)
	return ids, errors.WithStack(err)
}

func (svc *Service) fetchAlbums(ctx context.Context, ids []int, sortBy, order string) ([]*models.Album, error) {
	albums := []*models.Album{}
	q := svc.db.NewSelect().
		Model(&albums).
		Relation("Artists", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("aa.position ASC")
		}).
		Relation("Artists.Artist").
		Relation("Genres").
		Relation("Genres.Genre").
		Relation("Tags").
		Relation("Tags.Tag").
		Relation("Tracks", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("tr.disc_no ASC, tr.position ASC")
		}).
		Relation("Location").
		Where("a.id IN (?)", bun.In(ids)).
		Limit(searchResultCap)

	q = ApplySort(q, sortBy, order)

	err := q.Scan(ctx)
	return albums, errors.WithStack(err)
}

// ApplySort orders an albums select. The artist sort orders by each album's
// lexicographically-smallest artist name and groups by album to avoid
// duplicate rows from the join. Unrecognized sort keys fall back to
// created_at, which defaults to descending.
func ApplySort(q *bun.SelectQuery, sortBy, order string) *bun.SelectQuery {
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}

	switch sortBy {
	case "title":
		return q.OrderExpr("a.title COLLATE NOCASE " + dir)
	case "year":
		return q.OrderExpr("a.year " + dir)
	case "artist":
		return q.
			Join("LEFT JOIN album_artists aa ON aa.album_id = a.id").
			Join("LEFT JOIN artists ar ON ar.id = aa.artist_id").
			GroupExpr("a.id").
			OrderExpr("MIN(ar.name) COLLATE NOCASE " + dir)
	default:
		if order == "" {
			dir = "DESC"
		}
		return q.OrderExpr("a.created_at " + dir)
	}
}

// IndexAlbum adds or updates an album in the FTS index.
func (svc *Service) IndexAlbum(ctx context.Context, album *models.Album) error {
	// First, delete any existing entry
	err := svc.DeleteFromAlbumIndex(ctx, album.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	notes := ""
	if album.Notes != nil {
		notes = *album.Notes
	}

	_, err = svc.db.ExecContext(ctx,
		`INSERT INTO albums_fts (album_id, title, notes) VALUES (?, ?, ?)`,
		album.ID, album.Title, notes,
	)
	return errors.WithStack(err)
}

// DeleteFromAlbumIndex removes an album from the FTS index.
func (svc *Service) DeleteFromAlbumIndex(ctx context.Context, albumID int) error {
	_, err := svc.db.NewDelete().
		TableExpr("albums_fts").
		Where("album_id = ?", albumID).
		Exec(ctx)
	return errors.WithStack(err)
}

// RebuildIndex rebuilds the FTS index from scratch. This is called after a
// collection import replaces the live store.
func (svc *Service) RebuildIndex(ctx context.Context) error {
	_, err := svc.db.ExecContext(ctx, "DELETE FROM albums_fts")
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = svc.db.ExecContext(ctx, `
		INSERT INTO albums_fts (album_id, title, notes)
		SELECT id, title, COALESCE(notes, '')
		FROM albums
	`)
	return errors.WithStack(err)
}
