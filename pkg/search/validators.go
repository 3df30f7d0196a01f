package search

// SearchQuery represents the query parameters for collection search.
type SearchQuery struct {
	Query  string `query:"q" json:"q" validate:"required,min=1,max=100"`
	Filter string `query:"filter" json:"filter,omitempty" default:"all" validate:"oneof=all title artist genre tag track media_type"`
	SortBy string `query:"sort_by" json:"sort_by,omitempty" validate:"omitempty,oneof=title year created_at artist"`
	Order  string `query:"order" json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}
