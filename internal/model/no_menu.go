package model

import "time"

// NoMenuReason explains why no menu could be produced
type NoMenuReason string

const (
	ReasonClosed            NoMenuReason = "closed"
	ReasonLowRating         NoMenuReason = "low-rating"
	ReasonInsufficientData  NoMenuReason = "insufficient-data"
	ReasonLookupError       NoMenuReason = "lookup-error"
	ReasonAllTiersExhausted NoMenuReason = "all-tiers-exhausted"
)

// NoMenuResponse is the caller-visible failure payload
type NoMenuResponse struct {
	PlaceID           string       `json:"placeId"`
	NoMenuAvailable   bool         `json:"noMenuAvailable"`
	Reason            NoMenuReason `json:"reason"`
	ErrorMessage      string       `json:"errorMessage"`
	RestaurantName    string       `json:"restaurantName,omitempty"`
	AISearchAvailable bool         `json:"aiSearchAvailable"`
	LastUpdated       time.Time    `json:"lastUpdated"`
}

// MenuResult carries exactly one of Menu or NoMenu
type MenuResult struct {
	Menu     *MenuDocument   `json:"menu,omitempty"`
	NoMenu   *NoMenuResponse `json:"noMenu,omitempty"`
	CacheHit bool            `json:"-"`
}

// Found reports whether the result is a menu
func (r *MenuResult) Found() bool {
	return r != nil && r.Menu != nil
}

// Payload returns whichever side of the result is set
func (r *MenuResult) Payload() interface{} {
	if r.Menu != nil {
		return r.Menu
	}
	return r.NoMenu
}
