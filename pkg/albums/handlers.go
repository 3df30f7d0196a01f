package albums

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/discvault/discvault/pkg/musicbrainz"
	"github.com/discvault/discvault/pkg/search"
	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	albumService  *Service
	searchService *search.Service
	lookupClient  *musicbrainz.Client
	cfg           *config.Config
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAlbumsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	albums, total, err := h.albumService.ListAlbums(ctx, ListAlbumsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		SortBy: params.SortBy,
		Order:  params.Order,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"albums": albums,
		"total":  total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Album")
	}

	album, err := h.albumService.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, album))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Extraneous client-side fields on track specs are ignored, not rejected.
	c.Set("disallow_unknown_fields", false)

	params := CreateAlbumPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	album, err := h.albumService.CreateAlbum(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	h.reindex(c, album.ID)

	return errors.WithStack(c.JSON(http.StatusCreated, album))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Album")
	}

	c.Set("disallow_unknown_fields", false)

	params := UpdateAlbumPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	album, err := h.albumService.UpdateAlbum(ctx, id, params)
	if err != nil {
		return errors.WithStack(err)
	}

	h.reindex(c, album.ID)

	return errors.WithStack(c.JSON(http.StatusOK, album))
}

func (h *handler) deleteAlbum(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Album")
	}

	err = h.albumService.DeleteAlbum(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	log := logger.FromContext(ctx)
	if err := h.searchService.DeleteFromAlbumIndex(ctx, id); err != nil {
		log.Warn("failed to remove album from search index", logger.Data{"album_id": id, "error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) checkDuplicate(c echo.Context) error {
	ctx := c.Request().Context()

	params := CheckDuplicateQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	duplicates, err := h.albumService.FindDuplicates(ctx, params.Title, params.ArtistNames, params.UPCEAN)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, duplicates))
}

func (h *handler) sync(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Album")
	}

	album, err := h.albumService.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if album.UPCEAN == nil || strings.TrimSpace(*album.UPCEAN) == "" {
		return errcodes.BadRequest("Album has no barcode to look up.")
	}

	release, err := h.lookupClient.Lookup(ctx, *album.UPCEAN)
	if err != nil {
		return errors.WithStack(err)
	}
	if release == nil {
		return errcodes.NotFound("Release")
	}

	params := BuildSyncUpdate(album, release)
	album, err = h.albumService.UpdateAlbum(ctx, id, params)
	if err != nil {
		return errors.WithStack(err)
	}

	h.reindex(c, album.ID)

	return errors.WithStack(c.JSON(http.StatusOK, album))
}

func (h *handler) uploadCover(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Album")
	}

	// Make sure the album exists before touching the filesystem.
	if _, err := h.albumService.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	params := UploadCoverPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fileHeader := params.FormFiles["cover"]
	if fileHeader == nil {
		return errcodes.ValidationError("A cover file is required.")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return errors.WithStack(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return errcodes.ValidationError("Cover must be an image file.")
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return errors.WithStack(err)
	}

	if err := os.MkdirAll(h.cfg.CoverDir, 0755); err != nil {
		return errors.WithStack(err)
	}

	filename := fmt.Sprintf("album_%d%s", id, mtype.Extension())
	dst, err := os.Create(filepath.Join(h.cfg.CoverDir, filename))
	if err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.WithStack(err)
	}

	coverURL := "/covers/" + filename
	album, err := h.albumService.UpdateAlbum(ctx, id, UpdateAlbumPayload{CoverURL: &coverURL})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, album))
}

// reindex updates the FTS entry after a write. Index maintenance is a
// best-effort secondary step outside the write transaction; a failure leaves
// the index stale until the next write or rebuild, so it is logged rather
// than failing the request.
func (h *handler) reindex(c echo.Context, albumID int) {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	album, err := h.albumService.RetrieveAlbum(ctx, RetrieveAlbumOptions{ID: &albumID})
	if err != nil {
		log.Warn("failed to reload album for search index", logger.Data{"album_id": albumID, "error": err.Error()})
		return
	}
	if err := h.searchService.IndexAlbum(ctx, album); err != nil {
		log.Warn("failed to update search index for album", logger.Data{"album_id": albumID, "error": err.Error()})
	}
}
