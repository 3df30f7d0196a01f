package stats

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers stats routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	statsService := NewService(db)

	h := &handler{
		statsService: statsService,
	}

	g.GET("", h.retrieve)
}
