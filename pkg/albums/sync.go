package albums

import (
	"strings"

	"github.com/discvault/discvault/pkg/models"
	"github.com/discvault/discvault/pkg/musicbrainz"
)

// BuildSyncUpdate maps an external release onto a partial album update.
// Scalar fields are only taken when the local value is empty (local data
// wins). Collection fields replace the local sets wholesale whenever the
// lookup provides them. Applying the result twice against an unchanged
// release is a no-op after the first application.
func BuildSyncUpdate(album *models.Album, release *musicbrainz.Release) UpdateAlbumPayload {
	params := UpdateAlbumPayload{}

	if strings.TrimSpace(album.Title) == "" && release.Title != "" {
		title := release.Title
		params.Title = &title
	}
	if album.Year == nil && release.Year != nil {
		params.Year = release.Year
	}
	if isEmpty(album.CatalogNo) && release.CatalogNo != nil {
		params.CatalogNo = release.CatalogNo
	}
	if isEmpty(album.CoverURL) && release.CoverURL != nil {
		params.CoverURL = release.CoverURL
	}

	if len(release.Artists) > 0 {
		params.ArtistNames = release.Artists
	}
	if len(release.Genres) > 0 {
		params.GenreNames = release.Genres
	}
	if len(release.Tracks) > 0 {
		specs := make([]TrackSpec, len(release.Tracks))
		for i, track := range release.Tracks {
			position := track.Position
			discNo := track.DiscNo
			specs[i] = TrackSpec{
				Position: &position,
				Title:    track.Title,
				Duration: track.Duration,
				DiscNo:   &discNo,
				DiscName: track.DiscName,
			}
		}
		params.Tracks = specs
	}

	return params
}

func isEmpty(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
