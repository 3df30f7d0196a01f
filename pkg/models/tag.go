package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TagColorDefault is used when a tag is created without a color.
const TagColorDefault = "#CCCCCC"

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	Color     string    `bun:",nullzero" json:"color"`

	AlbumCount int `bun:",scanonly" json:"album_count,omitempty"`
}

type AlbumTag struct {
	bun.BaseModel `bun:"table:album_tags,alias:at"`

	ID      int  `bun:",pk,nullzero" json:"id"`
	AlbumID int  `bun:",nullzero" json:"album_id"`
	TagID   int  `bun:",nullzero" json:"tag_id"`
	Tag     *Tag `bun:"rel:belongs-to,join:tag_id=id" json:"tag,omitempty"`
}
