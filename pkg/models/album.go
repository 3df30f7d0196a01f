package models

import (
	"time"

	"github.com/uptrace/bun"
)

// MediaTypeDefault is used when an album is created without a media type.
const MediaTypeDefault = "CD"

type Album struct {
	bun.BaseModel `bun:"table:albums,alias:a"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	Title      string     `bun:",nullzero" json:"title"`
	Year       *int       `json:"year"`
	UPCEAN     *string    `bun:"upc_ean" json:"upc_ean"`
	CatalogNo  *string    `json:"catalog_no"`
	SparsCode  *string    `json:"spars_code"`
	CoverURL   *string    `json:"cover_url"`
	MediaType  string     `bun:",nullzero" json:"media_type"`
	Notes      *string    `json:"notes"`
	LocationID *int       `json:"location_id,omitempty"`

	Location *Location      `bun:"rel:belongs-to,join:location_id=id" json:"location,omitempty"`
	Artists  []*AlbumArtist `bun:"rel:has-many,join:id=album_id" json:"artists"`
	Genres   []*AlbumGenre  `bun:"rel:has-many,join:id=album_id" json:"genres"`
	Tags     []*AlbumTag    `bun:"rel:has-many,join:id=album_id" json:"tags"`
	Tracks   []*Track       `bun:"rel:has-many,join:id=album_id" json:"tracks"`
}

// ArtistNames returns the album's artist names in link order.
func (a *Album) ArtistNames() []string {
	names := make([]string, 0, len(a.Artists))
	for _, link := range a.Artists {
		if link.Artist != nil {
			names = append(names, link.Artist.Name)
		}
	}
	return names
}
