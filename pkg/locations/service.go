package locations

import (
	"context"
	"database/sql"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveLocationOptions struct {
	ID *int
}

type ListLocationsOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateLocation(ctx context.Context, location *models.Location) error {
	now := time.Now()
	if location.CreatedAt.IsZero() {
		location.CreatedAt = now
	}
	location.UpdatedAt = location.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(location).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveLocation(ctx context.Context, opts RetrieveLocationOptions) (*models.Location, error) {
	location := &models.Location{}

	q := svc.db.
		NewSelect().
		Model(location).
		ColumnExpr("l.*").
		ColumnExpr("(SELECT COUNT(*) FROM albums a WHERE a.location_id = l.id) AS album_count")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Location")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return location, nil
}

func (svc *Service) ListLocations(ctx context.Context, opts ListLocationsOptions) ([]*models.Location, int, error) {
	locations := []*models.Location{}

	q := svc.db.
		NewSelect().
		Model(&locations).
		ColumnExpr("l.*").
		ColumnExpr("(SELECT COUNT(*) FROM albums a WHERE a.location_id = l.id) AS album_count").
		OrderExpr("l.name COLLATE NOCASE ASC")

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

	total, err := svc.db.NewSelect().Model((*models.Location)(nil)).Count(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return locations, total, nil
}

func (svc *Service) UpdateLocation(ctx context.Context, location *models.Location, columns []string) error {
	location.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(location).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteLocation clears the location reference on any albums stored there,
// then removes the location. Albums are never deleted with their location.
func (svc *Service) DeleteLocation(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Location)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Location")
		}

		_, err = tx.NewUpdate().
			Model((*models.Album)(nil)).
			Set("location_id = NULL").
			Where("location_id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().Model((*models.Location)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
}
