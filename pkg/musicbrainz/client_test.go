package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/discvault/discvault/pkg/config"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"releases": [{"id": "rel-123", "score": 100}]}`

const releaseBody = `{
	"title": "OK Computer",
	"date": "1997-06-16",
	"artist-credit": [{"name": "Radiohead"}],
	"label-info": [{"catalog-number": "CDNODATA 1"}],
	"tags": [
		{"count": 2, "name": "electronic"},
		{"count": 9, "name": "alternative rock"},
		{"count": 5, "name": "rock"},
		{"count": 1, "name": "a"},
		{"count": 1, "name": "b"},
		{"count": 1, "name": "c"}
	],
	"media": [
		{
			"position": 1,
			"tracks": [
				{"position": 1, "title": "Airbag", "length": 284000},
				{"position": 2, "title": "Paranoid Android", "length": 383000}
			]
		}
	]
}`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&config.Config{
		MusicBrainzBaseURL: srv.URL,
		CoverArtBaseURL:    "https://coverart.test",
		LookupTimeout:      5 * time.Second,
	})
}

func TestLookup(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		switch {
		case strings.HasPrefix(r.URL.Path, "/release/rel-123"):
			_, _ = w.Write([]byte(releaseBody))
		case r.URL.Path == "/release":
			require.Contains(t, r.URL.Query().Get("query"), "barcode:")
			_, _ = w.Write([]byte(searchBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	release, err := client.Lookup(context.Background(), "724385522925")
	require.NoError(t, err)
	require.NotNil(t, release)

	require.Equal(t, "OK Computer", release.Title)
	require.Equal(t, 1997, *release.Year)
	require.Equal(t, "CDNODATA 1", *release.CatalogNo)
	require.Equal(t, []string{"Radiohead"}, release.Artists)
	require.Equal(t, "https://coverart.test/release/rel-123/front-250", *release.CoverURL)

	// top tags by count, capped at five
	require.Equal(t, []string{"alternative rock", "rock", "electronic", "a", "b"}, release.Genres)

	require.Len(t, release.Tracks, 2)
	require.Equal(t, 1, release.Tracks[0].Position)
	require.Equal(t, "Airbag", release.Tracks[0].Title)
	require.Equal(t, "4:44", *release.Tracks[0].Duration)
	require.Equal(t, 1, release.Tracks[0].DiscNo)
	require.Equal(t, "6:23", *release.Tracks[1].Duration)
}

func TestLookup_NoResultsIsNotAnError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"releases": []}`))
	}))

	release, err := client.Lookup(context.Background(), "000")
	require.NoError(t, err)
	require.Nil(t, release)
}

func TestLookup_ServerErrorIsNotAnError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	release, err := client.Lookup(context.Background(), "000")
	require.NoError(t, err)
	require.Nil(t, release)
}

func TestLookup_MalformedResponseIsNotAnError(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))

	release, err := client.Lookup(context.Background(), "000")
	require.NoError(t, err)
	require.Nil(t, release)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	length := 284000
	require.Equal(t, "4:44", *formatDuration(&length))

	short := 59000
	require.Equal(t, "0:59", *formatDuration(&short))

	require.Nil(t, formatDuration(nil))
	zero := 0
	require.Nil(t, formatDuration(&zero))
}
