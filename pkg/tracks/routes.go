package tracks

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers tracklist routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group) {
	h := &handler{}

	g.POST("/parse", h.parse)
}
