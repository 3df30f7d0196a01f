package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Track rows are owned by their album: they are created with it, wholly
// replaced on album updates, and deleted with it. There is no per-track
// update path.
type Track struct {
	bun.BaseModel `bun:"table:tracks,alias:tr"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	AlbumID   int       `bun:",nullzero" json:"album_id"`
	Position  int       `json:"position"`
	Title     string    `bun:",nullzero" json:"title"`
	Duration  *string   `json:"duration"`
	DiscNo    int       `bun:",nullzero,default:1" json:"disc_no"`
	DiscName  *string   `json:"disc_name"`
}
