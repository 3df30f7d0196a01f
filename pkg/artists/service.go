package artists

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/discvault/discvault/pkg/search"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveArtistOptions struct {
	ID   *int
	Name *string
}

type ListArtistsOptions struct {
	Limit  *int
	Offset *int
	Search *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateArtist(ctx context.Context, artist *models.Artist) error {
	now := time.Now()
	if artist.CreatedAt.IsZero() {
		artist.CreatedAt = now
	}
	artist.UpdatedAt = artist.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(artist).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveArtist(ctx context.Context, opts RetrieveArtistOptions) (*models.Artist, error) {
	artist := &models.Artist{}

	q := svc.db.
		NewSelect().
		Model(artist).
		ColumnExpr("ar.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_artists aa WHERE aa.artist_id = ar.id) AS album_count")

	if opts.ID != nil {
		q = q.Where("ar.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("ar.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Artist")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return artist, nil
}

func (svc *Service) ListArtists(ctx context.Context, opts ListArtistsOptions) ([]*models.Artist, int, error) {
	artists := []*models.Artist{}

	q := svc.db.
		NewSelect().
		Model(&artists).
		ColumnExpr("ar.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_artists aa WHERE aa.artist_id = ar.id) AS album_count").
		OrderExpr("ar.name COLLATE NOCASE ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(ar.name) LIKE ? ESCAPE '\\'", search.LikePattern(strings.ToLower(*opts.Search)))
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	countQ := svc.db.NewSelect().Model((*models.Artist)(nil))
	if opts.Search != nil && *opts.Search != "" {
		countQ = countQ.Where("LOWER(name) LIKE ? ESCAPE '\\'", search.LikePattern(strings.ToLower(*opts.Search)))
	}
	total, err := countQ.Count(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return artists, total, nil
}

func (svc *Service) UpdateArtist(ctx context.Context, artist *models.Artist) error {
	artist.UpdatedAt = time.Now()

	_, err := svc.db.
		NewUpdate().
		Model(artist).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteArtist removes the artist and its album links in one unit of work.
func (svc *Service) DeleteArtist(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Artist)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Artist")
		}

		if _, err := tx.NewDelete().Model((*models.AlbumArtist)(nil)).Where("artist_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.Artist)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
}
