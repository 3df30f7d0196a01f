package locations

// ListLocationsQuery represents the query parameters for listing locations.
type ListLocationsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=500"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// CreateLocationPayload represents the payload for creating a location.
type CreateLocationPayload struct {
	Name        string  `json:"name" mod:"trim" validate:"required,max=200"`
	StorageType string  `json:"storage_type" mod:"trim" default:"shelf" validate:"max=50"`
	Section     *string `json:"section" mod:"trim" validate:"omitempty,max=100"`
	Shelf       *string `json:"shelf" mod:"trim" validate:"omitempty,max=100"`
	Position    *string `json:"position" mod:"trim" validate:"omitempty,max=100"`
}

// UpdateLocationPayload represents the payload for updating a location.
type UpdateLocationPayload struct {
	Name        *string `json:"name" mod:"trim" validate:"omitempty,min=1,max=200"`
	StorageType *string `json:"storage_type" mod:"trim" validate:"omitempty,max=50"`
	Section     *string `json:"section" mod:"trim" validate:"omitempty,max=100"`
	Shelf       *string `json:"shelf" mod:"trim" validate:"omitempty,max=100"`
	Position    *string `json:"position" mod:"trim" validate:"omitempty,max=100"`
}
