package genres

import (
	"context"
	"database/sql"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveGenreOptions struct {
	ID   *int
	Name *string
}

type ListGenresOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateGenre inserts a genre. Names are unique case-insensitively; creating
// an existing name is a validation error rather than a silent no-op.
func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Genre)(nil)).
		Where("name = ? COLLATE NOCASE", genre.Name).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.ValidationError("A genre with that name already exists.")
	}

	now := time.Now()
	if genre.CreatedAt.IsZero() {
		genre.CreatedAt = now
	}
	genre.UpdatedAt = genre.CreatedAt

	_, err = svc.db.
		NewInsert().
		Model(genre).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_genres ag WHERE ag.genre_id = g.id) AS album_count")

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Genre")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return genre, nil
}

func (svc *Service) ListGenres(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	genres := []*models.Genre{}

	q := svc.db.
		NewSelect().
		Model(&genres).
		ColumnExpr("g.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_genres ag WHERE ag.genre_id = g.id) AS album_count").
		OrderExpr("g.name COLLATE NOCASE ASC")

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

	total, err := svc.db.NewSelect().Model((*models.Genre)(nil)).Count(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return genres, total, nil
}

func (svc *Service) UpdateGenre(ctx context.Context, genre *models.Genre) error {
	genre.UpdatedAt = time.Now()

	_, err := svc.db.
		NewUpdate().
		Model(genre).
		Column("name", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteGenre removes the genre's link rows first, then the genre itself, in
// one unit of work so no orphaned links remain.
func (svc *Service) DeleteGenre(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Genre)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Genre")
		}

		if _, err := tx.NewDelete().Model((*models.AlbumGenre)(nil)).Where("genre_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.Genre)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
}
