package tags

// ListTagsQuery represents the query parameters for listing tags.
type ListTagsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// CreateTagPayload represents the payload for creating a tag.
type CreateTagPayload struct {
	Name  string `json:"name" mod:"trim" validate:"required,max=100"`
	Color string `json:"color" mod:"trim" validate:"omitempty,hexcolor"`
}

// UpdateTagPayload represents the payload for updating a tag.
type UpdateTagPayload struct {
	Name  *string `json:"name" mod:"trim" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" mod:"trim" validate:"omitempty,hexcolor"`
}
