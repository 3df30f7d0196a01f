package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Location struct {
	bun.BaseModel `bun:"table:locations,alias:l"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Name        string    `bun:",nullzero" json:"name"`
	StorageType string    `bun:",nullzero" json:"storage_type"`
	Section     *string   `json:"section"`
	Shelf       *string   `json:"shelf"`
	Position    *string   `json:"position"`

	AlbumCount int `bun:",scanonly" json:"album_count,omitempty"`
}
