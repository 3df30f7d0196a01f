package backup

import (
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ImportPayload carries the uploaded archive.
type ImportPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type handler struct {
	backupService *Service
}

func (h *handler) export(c echo.Context) error {
	ctx := c.Request().Context()

	// Build the archive in a temp file first so failures still return a
	// proper error response instead of a truncated stream.
	tmp, err := os.CreateTemp("", "discvault-export-*.zip")
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := h.backupService.WriteArchive(ctx, tmp); err != nil {
		return errors.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}

	filename := "discvault-export-" + time.Now().Format("20060102") + ".zip"
	return errors.WithStack(c.Attachment(tmp.Name(), filename))
}

func (h *handler) importArchive(c echo.Context) error {
	ctx := c.Request().Context()

	params := ImportPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fileHeader := params.FormFiles["file"]
	if fileHeader == nil {
		return errcodes.ValidationError("An archive file is required.")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	manifest, err := h.backupService.RestoreArchive(ctx, src)
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"imported":    true,
		"album_count": manifest.AlbumCount,
		"exported_at": manifest.ExportedAt,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}
