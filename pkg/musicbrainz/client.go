package musicbrainz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/discvault/discvault/pkg/config"
	"github.com/discvault/discvault/pkg/version"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const maxGenres = 5

// Track is one track row from an external release.
type Track struct {
	Position int
	Title    string
	Duration *string
	DiscNo   int
	DiscName *string
}

// Release is the metadata record returned by a barcode lookup.
type Release struct {
	Title     string
	Year      *int
	CatalogNo *string
	CoverURL  *string
	Artists   []string
	Genres    []string
	Tracks    []Track
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	coverArtBaseURL string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: cfg.LookupTimeout},
		baseURL:         strings.TrimRight(cfg.MusicBrainzBaseURL, "/"),
		coverArtBaseURL: strings.TrimRight(cfg.CoverArtBaseURL, "/"),
	}
}

// Lookup resolves a barcode to release metadata in two steps: a barcode
// search for the release id, then a detail fetch. It makes a single attempt
// per step; any timeout, non-2xx response, decode error, or empty result is
// treated uniformly as "no match found" rather than an error.
func (c *Client) Lookup(ctx context.Context, barcode string) (*Release, error) {
	log := logger.FromContext(ctx)

	releaseID, ok := c.searchByBarcode(ctx, barcode)
	if !ok {
		log.Info("barcode lookup found no release", logger.Data{"barcode": barcode})
		return nil, nil
	}

	release, ok := c.fetchRelease(ctx, releaseID)
	if !ok {
		log.Warn("release detail fetch failed", logger.Data{"release_id": releaseID})
		return nil, nil
	}

	coverURL := fmt.Sprintf("%s/release/%s/front-250", c.coverArtBaseURL, releaseID)
	release.CoverURL = &coverURL

	return release, nil
}

type searchResponse struct {
	Releases []struct {
		ID string `json:"id"`
	} `json:"releases"`
}

func (c *Client) searchByBarcode(ctx context.Context, barcode string) (string, bool) {
	query := url.QueryEscape("barcode:" + barcode)
	endpoint := fmt.Sprintf("%s/release?query=%s&fmt=json&limit=1", c.baseURL, query)

	body := searchResponse{}
	if !c.getJSON(ctx, endpoint, &body) {
		return "", false
	}
	if len(body.Releases) == 0 {
		return "", false
	}
	return body.Releases[0].ID, true
}

type releaseResponse struct {
	Title        string `json:"title"`
	Date         string `json:"date"`
	ArtistCredit []struct {
		Name string `json:"name"`
	} `json:"artist-credit"`
	LabelInfo []struct {
		CatalogNumber string `json:"catalog-number"`
	} `json:"label-info"`
	Media []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Tracks   []struct {
			Position int    `json:"position"`
			Title    string `json:"title"`
			Length   *int   `json:"length"`
		} `json:"tracks"`
	} `json:"media"`
	Tags []struct {
		Count int    `json:"count"`
		Name  string `json:"name"`
	} `json:"tags"`
}

func (c *Client) fetchRelease(ctx context.Context, releaseID string) (*Release, bool) {
	endpoint := fmt.Sprintf("%s/release/%s?fmt=json&inc=artist-credits+recordings+media+tags+labels", c.baseURL, releaseID)

	body := releaseResponse{}
	if !c.getJSON(ctx, endpoint, &body) {
		return nil, false
	}

	release := &Release{Title: body.Title}

	if len(body.Date) >= 4 {
		if year, err := strconv.Atoi(body.Date[:4]); err == nil {
			release.Year = &year
		}
	}

	for _, credit := range body.ArtistCredit {
		if credit.Name != "" {
			release.Artists = append(release.Artists, credit.Name)
		}
	}

	for _, info := range body.LabelInfo {
		if info.CatalogNumber != "" {
			catalogNo := info.CatalogNumber
			release.CatalogNo = &catalogNo
			break
		}
	}

	// Top tags by usage count become genres.
	tags := body.Tags
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
	for i, tag := range tags {
		if i >= maxGenres {
			break
		}
		release.Genres = append(release.Genres, tag.Name)
	}

	for mediumIdx, medium := range body.Media {
		discNo := medium.Position
		if discNo <= 0 {
			discNo = mediumIdx + 1
		}
		var discName *string
		if medium.Title != "" {
			title := medium.Title
			discName = &title
		}
		for trackIdx, track := range medium.Tracks {
			position := track.Position
			if position <= 0 {
				position = trackIdx + 1
			}
			release.Tracks = append(release.Tracks, Track{
				Position: position,
				Title:    track.Title,
				Duration: formatDuration(track.Length),
				DiscNo:   discNo,
				DiscName: discName,
			})
		}
	}

	return release, true
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) bool {
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Err(err).Warn("lookup request build failed")
		return false
	}
	req.Header.Set("User-Agent", "discvault/"+version.Version+" (https://github.com/discvault/discvault)")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Warn("lookup request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("lookup returned non-2xx", logger.Data{"status": resp.StatusCode})
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Err(err).Warn("lookup decode failed")
		return false
	}
	return true
}

// formatDuration renders a millisecond length as m:ss.
func formatDuration(lengthMs *int) *string {
	if lengthMs == nil || *lengthMs <= 0 {
		return nil
	}
	totalSeconds := *lengthMs / 1000
	formatted := fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
	return &formatted
}
