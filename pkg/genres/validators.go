package genres

// ListGenresQuery represents the query parameters for listing genres.
type ListGenresQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// CreateGenrePayload represents the payload for creating a genre.
type CreateGenrePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}

// UpdateGenrePayload represents the payload for updating a genre.
type UpdateGenrePayload struct {
	Name *string `json:"name" mod:"trim" validate:"omitempty,min=1,max=100"`
}
