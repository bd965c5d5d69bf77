package addresses

// Input carries the writable fields of a delivery address.
type Input struct {
	Label    string
	Address1 string
	Address2 *string
	City     string
	Zipcode  string
	Lat      float64
	Lng      float64
	PlaceID  string
	IsMain   bool
}

// SuggestRequest asks the places API for completions of a partial address.
type SuggestRequest struct {
	Query    string
	Country  string
	Language string
}

// Suggestion is one autocomplete candidate shown to the customer.
type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

// ResolvedPlace is a place expanded into address fields the customer can
// save directly.
type ResolvedPlace struct {
	PlaceID  string  `json:"place_id"`
	Address1 string  `json:"address1"`
	Address2 *string `json:"address2,omitempty"`
	City     string  `json:"city"`
	Zipcode  string  `json:"zipcode"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
}
