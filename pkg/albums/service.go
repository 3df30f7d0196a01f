package albums

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/discvault/discvault/pkg/search"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveAlbumOptions struct {
	ID *int
}

type ListAlbumsOptions struct {
	IDs    []int
	Limit  *int
	Offset *int
	SortBy string
	Order  string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// hydrate eagerly loads every album relation. Artists keep their link order,
// tracks sort by disc then position.
func hydrate(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
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
		Relation("Location")
}

func (svc *Service) RetrieveAlbum(ctx context.Context, opts RetrieveAlbumOptions) (*models.Album, error) {
	album := &models.Album{}

	q := hydrate(svc.db.NewSelect().Model(album))

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Album")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return album, nil
}

func (svc *Service) ListAlbums(ctx context.Context, opts ListAlbumsOptions) ([]*models.Album, int, error) {
	albums := []*models.Album{}

	q := hydrate(svc.db.NewSelect().Model(&albums))

	if opts.IDs != nil {
		if len(opts.IDs) == 0 {
			return albums, 0, nil
		}
		q = q.Where("a.id IN (?)", bun.In(opts.IDs))
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	q = search.ApplySort(q, opts.SortBy, opts.Order)

	err := q.Scan(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	countQ := svc.db.NewSelect().Model((*models.Album)(nil))
	if opts.IDs != nil {
		countQ = countQ.Where("id IN (?)", bun.In(opts.IDs))
	}
	total, err := countQ.Count(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return albums, total, nil
}

// CreateAlbum inserts the album with its artist/genre/tag links and tracks in
// one unit of work, then returns it hydrated.
func (svc *Service) CreateAlbum(ctx context.Context, params CreateAlbumPayload) (*models.Album, error) {
	var albumID int

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()
		album := &models.Album{
			CreatedAt:  now,
			UpdatedAt:  now,
			Title:      params.Title,
			Year:       params.Year,
			UPCEAN:     params.UPCEAN,
			CatalogNo:  params.CatalogNo,
			SparsCode:  params.SparsCode,
			CoverURL:   params.CoverURL,
			MediaType:  params.MediaType,
			Notes:      params.Notes,
			LocationID: params.LocationID,
		}
		if album.MediaType == "" {
			album.MediaType = models.MediaTypeDefault
		}

		_, err := tx.NewInsert().Model(album).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		albumID = album.ID

		if err := replaceArtists(ctx, tx, album.ID, params.ArtistNames); err != nil {
			return err
		}
		if err := replaceGenres(ctx, tx, album.ID, params.GenreNames); err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, album.ID, params.TagIDs); err != nil {
			return err
		}
		return replaceTracks(ctx, tx, album.ID, params.Tracks)
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &albumID})
}

// UpdateAlbum applies a partial update in one unit of work. Nil fields are
// left untouched; zero-value pointers clear; non-nil slices wholesale replace
// the association sets (tracks are deleted and recreated).
func (svc *Service) UpdateAlbum(ctx context.Context, id int, params UpdateAlbumPayload) (*models.Album, error) {
	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		album := &models.Album{}
		err := tx.NewSelect().Model(album).Where("a.id = ?", id).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Album")
		} else if err != nil {
			return errors.WithStack(err)
		}

		columns := []string{"updated_at"}
		album.UpdatedAt = time.Now()

		if params.Title != nil {
			album.Title = *params.Title
			columns = append(columns, "title")
		}
		if params.Year != nil {
			album.Year = clearableInt(params.Year)
			columns = append(columns, "year")
		}
		if params.UPCEAN != nil {
			album.UPCEAN = clearableString(params.UPCEAN)
			columns = append(columns, "upc_ean")
		}
		if params.CatalogNo != nil {
			album.CatalogNo = clearableString(params.CatalogNo)
			columns = append(columns, "catalog_no")
		}
		if params.SparsCode != nil {
			album.SparsCode = clearableString(params.SparsCode)
			columns = append(columns, "spars_code")
		}
		if params.CoverURL != nil {
			album.CoverURL = clearableString(params.CoverURL)
			columns = append(columns, "cover_url")
		}
		if params.MediaType != nil {
			album.MediaType = *params.MediaType
			if album.MediaType == "" {
				album.MediaType = models.MediaTypeDefault
			}
			columns = append(columns, "media_type")
		}
		if params.Notes != nil {
			album.Notes = clearableString(params.Notes)
			columns = append(columns, "notes")
		}
		if params.LocationID != nil {
			album.LocationID = clearableInt(params.LocationID)
			columns = append(columns, "location_id")
		}
		if params.Archived != nil {
			if *params.Archived {
				now := album.UpdatedAt
				album.ArchivedAt = &now
			} else {
				album.ArchivedAt = nil
			}
			columns = append(columns, "archived_at")
		}

		_, err = tx.NewUpdate().Model(album).Column(columns...).WherePK().Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if params.ArtistNames != nil {
			if err := replaceArtists(ctx, tx, id, params.ArtistNames); err != nil {
				return err
			}
		}
		if params.GenreNames != nil {
			if err := replaceGenres(ctx, tx, id, params.GenreNames); err != nil {
				return err
			}
		}
		if params.TagIDs != nil {
			if err := replaceTags(ctx, tx, id, params.TagIDs); err != nil {
				return err
			}
		}
		if params.Tracks != nil {
			if err := replaceTracks(ctx, tx, id, params.Tracks); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return svc.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &id})
}

// DeleteAlbum removes the album, its link rows, and its tracks in one unit of
// work.
func (svc *Service) DeleteAlbum(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Album)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Album")
		}

		if _, err := tx.NewDelete().Model((*models.AlbumArtist)(nil)).Where("album_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*models.AlbumGenre)(nil)).Where("album_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*models.AlbumTag)(nil)).Where("album_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		if _, err := tx.NewDelete().Model((*models.Track)(nil)).Where("album_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.Album)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
}

func clearableString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func clearableInt(i *int) *int {
	if i == nil || *i == 0 {
		return nil
	}
	return i
}

func replaceArtists(ctx context.Context, db bun.IDB, albumID int, names []string) error {
	_, err := db.NewDelete().Model((*models.AlbumArtist)(nil)).Where("album_id = ?", albumID).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	position := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		artist, err := findOrCreateArtist(ctx, db, name)
		if err != nil {
			return err
		}
		link := &models.AlbumArtist{
			AlbumID:  albumID,
			ArtistID: artist.ID,
			Role:     models.ArtistRoleDefault,
			Position: position,
		}
		if _, err := db.NewInsert().Model(link).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		position++
	}
	return nil
}

func replaceGenres(ctx context.Context, db bun.IDB, albumID int, names []string) error {
	_, err := db.NewDelete().Model((*models.AlbumGenre)(nil)).Where("album_id = ?", albumID).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	seen := map[int]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		genre, err := findOrCreateGenre(ctx, db, name)
		if err != nil {
			return err
		}
		if seen[genre.ID] {
			continue
		}
		seen[genre.ID] = true
		link := &models.AlbumGenre{AlbumID: albumID, GenreID: genre.ID}
		if _, err := db.NewInsert().Model(link).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// replaceTags links existing tags only; unknown ids are an error so a typo'd
// id doesn't silently drop a tag.
func replaceTags(ctx context.Context, db bun.IDB, albumID int, tagIDs []int) error {
	_, err := db.NewDelete().Model((*models.AlbumTag)(nil)).Where("album_id = ?", albumID).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	seen := map[int]bool{}
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true

		exists, err := db.NewSelect().Model((*models.Tag)(nil)).Where("id = ?", tagID).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Tag")
		}

		link := &models.AlbumTag{AlbumID: albumID, TagID: tagID}
		if _, err := db.NewInsert().Model(link).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func replaceTracks(ctx context.Context, db bun.IDB, albumID int, specs []TrackSpec) error {
	_, err := db.NewDelete().Model((*models.Track)(nil)).Where("album_id = ?", albumID).Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	now := time.Now()
	for i, spec := range specs {
		position := i + 1
		if spec.Position != nil && *spec.Position > 0 {
			position = *spec.Position
		}
		title := strings.TrimSpace(spec.Title)
		if title == "" {
			title = fmt.Sprintf("Track %d", position)
		}
		discNo := 1
		if spec.DiscNo != nil && *spec.DiscNo > 0 {
			discNo = *spec.DiscNo
		}

		track := &models.Track{
			CreatedAt: now,
			UpdatedAt: now,
			AlbumID:   albumID,
			Position:  position,
			Title:     title,
			Duration:  spec.Duration,
			DiscNo:    discNo,
			DiscName:  spec.DiscName,
		}
		if _, err := db.NewInsert().Model(track).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func findOrCreateArtist(ctx context.Context, db bun.IDB, name string) (*models.Artist, error) {
	artist := &models.Artist{}
	err := db.NewSelect().Model(artist).Where("ar.name = ? COLLATE NOCASE", name).Limit(1).Scan(ctx)
	if err == nil {
		return artist, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	artist = &models.Artist{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err = db.NewInsert().Model(artist).Returning("*").Exec(ctx)
	return artist, errors.WithStack(err)
}

func findOrCreateGenre(ctx context.Context, db bun.IDB, name string) (*models.Genre, error) {
	genre := &models.Genre{}
	err := db.NewSelect().Model(genre).Where("g.name = ? COLLATE NOCASE", name).Limit(1).Scan(ctx)
	if err == nil {
		return genre, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	now := time.Now()
	genre = &models.Genre{CreatedAt: now, UpdatedAt: now, Name: name}
	_, err = db.NewInsert().Model(genre).Returning("*").Exec(ctx)
	return genre, errors.WithStack(err)
}
