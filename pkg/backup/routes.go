package backup

import (
	"github.com/discvault/discvault/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the export/import routes at the server root.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	backupService := NewService(db, cfg)

	h := &handler{
		backupService: backupService,
	}

	e.GET("/export", h.export)
	e.POST("/import", h.importArchive)
}
