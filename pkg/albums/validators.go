package albums

import "mime/multipart"

// TrackSpec is an incoming track row on album create/update. Track rows are
// owned by the album and wholly replaced, so there is no id field.
type TrackSpec struct {
	Position *int    `json:"position" validate:"omitempty,min=0"`
	Title    string  `json:"title" mod:"trim" validate:"max=500"`
	Duration *string `json:"duration" mod:"trim" validate:"omitempty,max=20"`
	DiscNo   *int    `json:"disc_no" validate:"omitempty,min=0"`
	DiscName *string `json:"disc_name" mod:"trim" validate:"omitempty,max=200"`
}

// CreateAlbumPayload represents the payload for creating an album. Artist and
// genre names are found-or-created by name; tag ids must reference existing
// tags.
type CreateAlbumPayload struct {
	Title       string      `json:"title" mod:"trim" validate:"required,max=500"`
	Year        *int        `json:"year" validate:"omitempty,min=0,max=9999"`
	UPCEAN      *string     `json:"upc_ean" mod:"trim" validate:"omitempty,max=50"`
	CatalogNo   *string     `json:"catalog_no" mod:"trim" validate:"omitempty,max=100"`
	SparsCode   *string     `json:"spars_code" mod:"trim" validate:"omitempty,max=10"`
	CoverURL    *string     `json:"cover_url" validate:"omitempty,url"`
	MediaType   string      `json:"media_type" mod:"trim" default:"CD" validate:"max=50"`
	Notes       *string     `json:"notes"`
	LocationID  *int        `json:"location_id" validate:"omitempty,min=1"`
	ArtistNames []string    `json:"artist_names"`
	GenreNames  []string    `json:"genre_names"`
	TagIDs      []int       `json:"tag_ids"`
	Tracks      []TrackSpec `json:"tracks"`
}

// UpdateAlbumPayload represents a partial album update. A nil pointer or nil
// slice means "leave untouched"; a pointer to a zero value clears the field;
// a non-nil empty slice clears the association set.
type UpdateAlbumPayload struct {
	Title       *string     `json:"title" mod:"trim" validate:"omitempty,min=1,max=500"`
	Year        *int        `json:"year" validate:"omitempty,min=0,max=9999"`
	UPCEAN      *string     `json:"upc_ean" mod:"trim" validate:"omitempty,max=50"`
	CatalogNo   *string     `json:"catalog_no" mod:"trim" validate:"omitempty,max=100"`
	SparsCode   *string     `json:"spars_code" mod:"trim" validate:"omitempty,max=10"`
	CoverURL    *string     `json:"cover_url" validate:"omitempty,url"`
	MediaType   *string     `json:"media_type" mod:"trim" validate:"omitempty,max=50"`
	Notes       *string     `json:"notes"`
	LocationID  *int        `json:"location_id" validate:"omitempty,min=0"`
	Archived    *bool       `json:"archived"`
	ArtistNames []string    `json:"artist_names"`
	GenreNames  []string    `json:"genre_names"`
	TagIDs      []int       `json:"tag_ids"`
	Tracks      []TrackSpec `json:"tracks"`
}

// ListAlbumsQuery represents the query parameters for listing albums.
type ListAlbumsQuery struct {
	Limit  int    `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
	SortBy string `query:"sort_by" json:"sort_by,omitempty" validate:"omitempty,oneof=title year created_at artist"`
	Order  string `query:"order" json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// CheckDuplicateQuery represents the query parameters for pre-insert
// duplicate detection.
type CheckDuplicateQuery struct {
	Title       string   `query:"title" json:"title,omitempty" validate:"omitempty,max=500"`
	ArtistNames []string `query:"artist_names" json:"artist_names,omitempty"`
	UPCEAN      string   `query:"upc_ean" json:"upc_ean,omitempty" validate:"omitempty,max=50"`
}

// UploadCoverPayload carries the multipart cover image upload.
type UploadCoverPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-" form:"-"`
}
