package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ArtistRoleDefault is the role assigned to album-artist links when the
// caller doesn't specify one.
const ArtistRoleDefault = "Main"

type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:ar"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`

	AlbumCount int `bun:",scanonly" json:"album_count,omitempty"`
}

type AlbumArtist struct {
	bun.BaseModel `bun:"table:album_artists,alias:aa"`

	ID       int     `bun:",pk,nullzero" json:"id"`
	AlbumID  int     `bun:",nullzero" json:"album_id"`
	ArtistID int     `bun:",nullzero" json:"artist_id"`
	Role     string  `bun:",nullzero" json:"role"`
	Position int     `json:"-"`
	Artist   *Artist `bun:"rel:belongs-to,join:artist_id=id" json:"artist,omitempty"`
}
