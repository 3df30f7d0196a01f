package artists

import (
	"net/http"
	"strconv"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	artistService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListArtistsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	artists, total, err := h.artistService.ListArtists(ctx, ListArtistsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"artists": artists,
		"total":   total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	artist, err := h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, artist))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateArtistPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	artist := &models.Artist{Name: params.Name}
	if err := h.artistService.CreateArtist(ctx, artist); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, artist))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	params := UpdateArtistPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	artist, err := h.artistService.RetrieveArtist(ctx, RetrieveArtistOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.Name != nil {
		artist.Name = *params.Name
		if err := h.artistService.UpdateArtist(ctx, artist); err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, artist))
}

func (h *handler) deleteArtist(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Artist")
	}

	if err := h.artistService.DeleteArtist(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
