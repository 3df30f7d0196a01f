package tracks

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/discvault/discvault/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ParseTracklistPayload accepts either raw tracklist text or an uploaded
// text file.
type ParseTracklistPayload struct {
	Text      string                           `json:"text" form:"text" validate:"omitempty,max=100000"`
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}

type handler struct{}

func (h *handler) parse(c echo.Context) error {
	params := ParseTracklistPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	text := params.Text
	if fileHeader := params.FormFiles["file"]; fileHeader != nil {
		src, err := fileHeader.Open()
		if err != nil {
			return errors.WithStack(err)
		}
		defer src.Close()

		contents, err := io.ReadAll(src)
		if err != nil {
			return errors.WithStack(err)
		}
		text = string(contents)
	}

	if text == "" {
		return errcodes.ValidationError("Either text or a file is required.")
	}

	parsed, err := ParseTracklist(text)
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"tracks": parsed,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}
