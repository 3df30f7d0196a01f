package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/discvault/discvault/pkg/albums"
	"github.com/discvault/discvault/pkg/artists"
	"github.com/discvault/discvault/pkg/backup"
	"github.com/discvault/discvault/pkg/binder"
	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/genres"
	"github.com/discvault/discvault/pkg/locations"
	"github.com/discvault/discvault/pkg/search"
	"github.com/discvault/discvault/pkg/stats"
	"github.com/discvault/discvault/pkg/tags"
	"github.com/discvault/discvault/pkg/tracks"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	search.RegisterRoutesWithGroup(e.Group("/search"), db)
	albums.RegisterRoutesWithGroup(e.Group("/albums"), db, cfg)
	artists.RegisterRoutesWithGroup(e.Group("/artists"), db)
	genres.RegisterRoutesWithGroup(e.Group("/genres"), db)
	tags.RegisterRoutesWithGroup(e.Group("/tags"), db)
	locations.RegisterRoutesWithGroup(e.Group("/locations"), db)
	tracks.RegisterRoutesWithGroup(e.Group("/tracks"))
	stats.RegisterRoutesWithGroup(e.Group("/stats"), db)
	backup.RegisterRoutes(e, db, cfg)

	// Uploaded cover images are served directly.
	e.Static("/covers", cfg.CoverDir)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
