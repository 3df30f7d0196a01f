package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`

	AlbumCount int `bun:",scanonly" json:"album_count,omitempty"`
}

type AlbumGenre struct {
	bun.BaseModel `bun:"table:album_genres,alias:ag"`

	ID      int    `bun:",pk,nullzero" json:"id"`
	AlbumID int    `bun:",nullzero" json:"album_id"`
	GenreID int    `bun:",nullzero" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
}
