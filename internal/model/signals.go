package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPlaceID = errors.New("place id is required")
	ErrInvalidBundle  = errors.New("invalid signal bundle")
)

// BusinessStatus mirrors the place-data provider's business status values
type BusinessStatus string

const (
	BusinessOperational       BusinessStatus = "OPERATIONAL"
	BusinessClosedTemporarily BusinessStatus = "CLOSED_TEMPORARILY"
	BusinessClosedPermanently BusinessStatus = "CLOSED_PERMANENTLY"
	BusinessStatusUnknown     BusinessStatus = ""
)

// IsClosed reports whether the status is one of the closed variants
func (s BusinessStatus) IsClosed() bool {
	return s == BusinessClosedTemporarily || s == BusinessClosedPermanently
}

// ReviewSnippet is a single review excerpt with its star rating
type ReviewSnippet struct {
	Text   string `json:"text" bson:"text"`
	Rating int    `json:"rating" bson:"rating"`
}

// RestaurantSignalBundle is everything known about a restaurant that drives
// classification and synthesis
type RestaurantSignalBundle struct {
	PlaceID          string          `json:"placeId" bson:"placeId"`
	Name             string          `json:"name" bson:"name"`
	Types            []string        `json:"types,omitempty" bson:"types,omitempty"`           // category tags
	Rating           *float64        `json:"rating,omitempty" bson:"rating,omitempty"`         // 0-5
	PriceLevel       *int            `json:"priceLevel,omitempty" bson:"priceLevel,omitempty"` // 0-4
	UserRatingsTotal int             `json:"userRatingsTotal" bson:"userRatingsTotal"`
	BusinessStatus   BusinessStatus  `json:"businessStatus,omitempty" bson:"businessStatus,omitempty"`
	Address          string          `json:"address,omitempty" bson:"address,omitempty"`
	Website          string          `json:"website,omitempty" bson:"website,omitempty"`
	Reviews          []ReviewSnippet `json:"reviews,omitempty" bson:"reviews,omitempty"`
	RestaurantType   Cuisine         `json:"restaurantType,omitempty" bson:"restaurantType,omitempty"` // upstream pre-tag
}

// Validate checks the bundle's structural constraints
func (b *RestaurantSignalBundle) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: bundle is nil", ErrInvalidBundle)
	}
	if strings.TrimSpace(b.PlaceID) == "" {
		return ErrInvalidPlaceID
	}
	if b.Rating != nil && (*b.Rating < 0 || *b.Rating > 5) {
		return fmt.Errorf("%w: rating %.2f out of range 0-5", ErrInvalidBundle, *b.Rating)
	}
	if b.PriceLevel != nil && (*b.PriceLevel < 0 || *b.PriceLevel > 4) {
		return fmt.Errorf("%w: price level %d out of range 0-4", ErrInvalidBundle, *b.PriceLevel)
	}
	if b.UserRatingsTotal < 0 {
		return fmt.Errorf("%w: negative rating count", ErrInvalidBundle)
	}
	return nil
}

// RatingValue returns the rating and whether one was supplied
func (b *RestaurantSignalBundle) RatingValue() (float64, bool) {
	if b.Rating == nil {
		return 0, false
	}
	return *b.Rating, true
}

// PriceLevelValue returns the price tier, defaulting to 2 when absent
func (b *RestaurantSignalBundle) PriceLevelValue() int {
	if b.PriceLevel == nil {
		return 2
	}
	return *b.PriceLevel
}

// Float64 and Int are helpers for building optional bundle fields
func Float64(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
