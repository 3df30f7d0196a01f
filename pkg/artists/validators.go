package artists

// ListArtistsQuery represents the query parameters for listing artists.
type ListArtistsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" validate:"omitempty,max=100"`
}

// CreateArtistPayload represents the payload for creating an artist.
type CreateArtistPayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=200"`
}

// UpdateArtistPayload represents the payload for updating an artist.
type UpdateArtistPayload struct {
	Name *string `json:"name" mod:"trim" validate:"omitempty,min=1,max=200"`
}
