package locations

import (
	"net/http"
	"strconv"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	locationService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLocationsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	locations, total, err := h.locationService.ListLocations(ctx, ListLocationsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"locations": locations,
		"total":     total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	location, err := h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, location))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLocationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	location := &models.Location{
		Name:        params.Name,
		StorageType: params.StorageType,
		Section:     params.Section,
		Shelf:       params.Shelf,
		Position:    params.Position,
	}
	if err := h.locationService.CreateLocation(ctx, location); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, location))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	params := UpdateLocationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	location, err := h.locationService.RetrieveLocation(ctx, RetrieveLocationOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	columns := []string{}
	if params.Name != nil {
		location.Name = *params.Name
		columns = append(columns, "name")
	}
	if params.StorageType != nil {
		location.StorageType = *params.StorageType
		columns = append(columns, "storage_type")
	}
	if params.Section != nil {
		location.Section = params.Section
		columns = append(columns, "section")
	}
	if params.Shelf != nil {
		location.Shelf = params.Shelf
		columns = append(columns, "shelf")
	}
	if params.Position != nil {
		location.Position = params.Position
		columns = append(columns, "position")
	}

	if len(columns) > 0 {
		if err := h.locationService.UpdateLocation(ctx, location, columns); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, location))
}

func (h *handler) deleteLocation(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Location")
	}

	if err := h.locationService.DeleteLocation(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
