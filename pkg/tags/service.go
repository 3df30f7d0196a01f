package tags

import (
	"context"
	"database/sql"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveTagOptions struct {
	ID   *int
	Name *string
}

type ListTagsOptions struct {
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateTag inserts a tag. Names are unique case-insensitively; creating an
// existing name is a validation error.
func (svc *Service) CreateTag(ctx context.Context, tag *models.Tag) error {
	exists, err := svc.db.NewSelect().
		Model((*models.Tag)(nil)).
		Where("name = ? COLLATE NOCASE", tag.Name).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.ValidationError("A tag with that name already exists.")
	}

	now := time.Now()
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = now
	}
	tag.UpdatedAt = tag.CreatedAt
	if tag.Color == "" {
		tag.Color = models.TagColorDefault
	}

	_, err = svc.db.
		NewInsert().
		Model(tag).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveTag(ctx context.Context, opts RetrieveTagOptions) (*models.Tag, error) {
	tag := &models.Tag{}

	q := svc.db.
		NewSelect().
		Model(tag).
		ColumnExpr("t.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_tags at WHERE at.tag_id = t.id) AS album_count")

	if opts.ID != nil {
		q = q.Where("t.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("t.name = ? COLLATE NOCASE", *opts.Name)
	}

	err := q.Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Tag")
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return tag, nil
}

func (svc *Service) ListTags(ctx context.Context, opts ListTagsOptions) ([]*models.Tag, int, error) {
	tags := []*models.Tag{}

	q := svc.db.
		NewSelect().
		Model(&tags).
		ColumnExpr("t.*").
		ColumnExpr("(SELECT COUNT(*) FROM album_tags at WHERE at.tag_id = t.id) AS album_count").
		OrderExpr("t.name COLLATE NOCASE ASC")

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

	total, err := svc.db.NewSelect().Model((*models.Tag)(nil)).Count(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return tags, total, nil
}

func (svc *Service) UpdateTag(ctx context.Context, tag *models.Tag) error {
	tag.UpdatedAt = time.Now()

	_, err := svc.db.
		NewUpdate().
		Model(tag).
		Column("name", "color", "updated_at").
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteTag removes the tag's link rows first, then the tag itself, in one
// unit of work so no orphaned links remain.
func (svc *Service) DeleteTag(ctx context.Context, id int) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Tag)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Tag")
		}

		if _, err := tx.NewDelete().Model((*models.AlbumTag)(nil)).Where("tag_id = ?", id).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.Tag)(nil)).Where("id = ?", id).Exec(ctx)
		return errors.WithStack(err)
	})
}
