package stats

import (
	"context"

	"github.com/discvault/discvault/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Stats holds the collection-wide counters.
type Stats struct {
	Albums    int `json:"albums"`
	Artists   int `json:"artists"`
	Genres    int `json:"genres"`
	Tags      int `json:"tags"`
	Locations int `json:"locations"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		model interface{}
		dest  *int
	}{
		{(*models.Album)(nil), &stats.Albums},
		{(*models.Artist)(nil), &stats.Artists},
		{(*models.Genre)(nil), &stats.Genres},
		{(*models.Tag)(nil), &stats.Tags},
		{(*models.Location)(nil), &stats.Locations},
	}

	for _, count := range counts {
		total, err := svc.db.NewSelect().Model(count.model).Count(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		*count.dest = total
	}

	return stats, nil
}
