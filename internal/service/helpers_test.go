package service

import (
	"menuengine/internal/config"
	"menuengine/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	cat, err := config.LoadCatalog("")
	require.NoError(t, err)
	return cat
}

// sushiBundle is a well-rated, fully described restaurant
func sushiBundle(placeID string) *model.RestaurantSignalBundle {
	return &model.RestaurantSignalBundle{
		PlaceID:          placeID,
		Name:             "Sushi Den",
		Types:            []string{"japanese_restaurant", "restaurant"},
		Rating:           model.Float64(4.6),
		PriceLevel:       model.Int(3),
		UserRatingsTotal: 850,
		BusinessStatus:   model.BusinessOperational,
		Reviews: []model.ReviewSnippet{
			{Text: "Freshest sushi in town, absolutely delicious", Rating: 5},
			{Text: "The salmon melts in your mouth", Rating: 5},
		},
	}
}

func newTestAdjuster(t *testing.T) *SynthesisAdjuster {
	t.Helper()
	a := NewSynthesisAdjuster(NewKeywordExtractor(testCatalog(t).Vocabulary), "USD")
	a.now = fixedClock
	return a
}
