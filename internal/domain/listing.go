package domain

// Listing is a single apartment in the catalog. The catalog is a static,
// read-only fixture: listings are loaded once and never mutated.
type Listing struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Distance float64 `json:"distance"` // km from the city centre
}

// SearchQuery holds the listing search filters and ordering.
type SearchQuery struct {
	Location string   `json:"location"`
	MinPrice *float64 `json:"min_price"`
	MaxPrice *float64 `json:"max_price"`
	SortBy   string   `json:"sort_by" validate:"omitempty,oneof=price rating distance"`
	Order    string   `json:"order" validate:"omitempty,oneof=asc desc"`
}
