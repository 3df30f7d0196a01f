package albums

import (
	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/musicbrainz"
	"github.com/discvault/discvault/pkg/search"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers album routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	albumService := NewService(db)
	searchService := search.NewService(db)
	lookupClient := musicbrainz.NewClient(cfg)

	h := &handler{
		albumService:  albumService,
		searchService: searchService,
		lookupClient:  lookupClient,
		cfg:           cfg,
	}

	g.GET("", h.list)
	g.GET("/check-duplicate", h.checkDuplicate)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.deleteAlbum)
	g.POST("/:id/sync", h.sync)
	g.POST("/:id/cover", h.uploadCover)
}
