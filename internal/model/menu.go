package model

import "time"

// Cuisine is the closed set of restaurant classifications
type Cuisine string

const (
	CuisineJapanese Cuisine = "japanese"
	CuisineItalian  Cuisine = "italian"
	CuisineChinese  Cuisine = "chinese"
	CuisineMexican  Cuisine = "mexican"
	CuisineThai     Cuisine = "thai"
	CuisineIndian   Cuisine = "indian"
	CuisineKorean   Cuisine = "korean"
	CuisineFrench   Cuisine = "french"
	CuisineSeafood  Cuisine = "seafood"
	CuisineCafe     Cuisine = "cafe"
	CuisineFastFood Cuisine = "fast_food"
	CuisineAmerican Cuisine = "american"
)

// AllCuisines lists every classification in tie-break priority order
var AllCuisines = []Cuisine{
	CuisineJapanese,
	CuisineItalian,
	CuisineChinese,
	CuisineMexican,
	CuisineThai,
	CuisineIndian,
	CuisineKorean,
	CuisineFrench,
	CuisineSeafood,
	CuisineCafe,
	CuisineFastFood,
	CuisineAmerican,
}

// IsKnown reports whether c is part of the enumeration
func (c Cuisine) IsKnown() bool {
	for _, known := range AllCuisines {
		if c == known {
			return true
		}
	}
	return false
}

// MenuSource records which tier produced a document
type MenuSource string

const (
	SourceAuthoritative MenuSource = "authoritative"
	SourceWebsite       MenuSource = "website"
	SourceAISynthesis   MenuSource = "ai-synthesis"
)

type MenuItem struct {
	Name          string  `json:"name" bson:"name"`
	Description   string  `json:"description" bson:"description"`
	Price         float64 `json:"price" bson:"price"`
	AIRecommended bool    `json:"aiRecommended,omitempty" bson:"aiRecommended,omitempty"`
	Provenance    string  `json:"provenance,omitempty" bson:"provenance,omitempty"` // review keyword behind an annotation
}

type MenuCategory struct {
	Name  string     `json:"name" bson:"name"`
	Items []MenuItem `json:"items" bson:"items"`
}

// MenuDocument is a resolved, itemized menu for one place
type MenuDocument struct {
	PlaceID          string         `json:"placeId" bson:"placeId"`
	Categories       []MenuCategory `json:"categories" bson:"categories"`
	Currency         string         `json:"currency" bson:"currency"`
	LastUpdated      time.Time      `json:"lastUpdated" bson:"lastUpdated"`
	Source           MenuSource     `json:"source" bson:"source"`
	RestaurantType   Cuisine        `json:"restaurantType,omitempty" bson:"restaurantType,omitempty"`
	Rating           *float64       `json:"rating,omitempty" bson:"rating,omitempty"`
	PriceLevel       *int           `json:"priceLevel,omitempty" bson:"priceLevel,omitempty"`
	UserRatingsTotal int            `json:"userRatingsTotal" bson:"userRatingsTotal"`
	AIGenerated      bool           `json:"aiGenerated" bson:"aiGenerated"`
}

// Valid reports whether the document may be returned as a success: at least
// one category and no empty category.
func (d *MenuDocument) Valid() bool {
	if d == nil || len(d.Categories) == 0 {
		return false
	}
	for _, c := range d.Categories {
		if len(c.Items) == 0 {
			return false
		}
	}
	return true
}

// ItemCount returns the number of items across all categories
func (d *MenuDocument) ItemCount() int {
	n := 0
	for _, c := range d.Categories {
		n += len(c.Items)
	}
	return n
}

// Clone returns a deep copy
func (d *MenuDocument) Clone() *MenuDocument {
	if d == nil {
		return nil
	}
	out := *d
	out.Categories = make([]MenuCategory, len(d.Categories))
	for i, c := range d.Categories {
		items := make([]MenuItem, len(c.Items))
		copy(items, c.Items)
		out.Categories[i] = MenuCategory{Name: c.Name, Items: items}
	}
	if d.Rating != nil {
		out.Rating = Float64(*d.Rating)
	}
	if d.PriceLevel != nil {
		out.PriceLevel = Int(*d.PriceLevel)
	}
	return &out
}

// CacheEntry is a cached document with its absolute expiry
type CacheEntry struct {
	Menu      *MenuDocument `json:"menu"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Live reports whether the entry may still be served at now
func (e *CacheEntry) Live(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}
