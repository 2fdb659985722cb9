package service

import (
	"menuengine/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoMenuBuilder_PreconditionReason(t *testing.T) {
	b := NewNoMenuBuilder(3.0)

	tests := []struct {
		name   string
		mutate func(*model.RestaurantSignalBundle)
		want   model.NoMenuReason
	}{
		{"eligible", func(*model.RestaurantSignalBundle) {}, ""},
		{"temporarily closed", func(b *model.RestaurantSignalBundle) { b.BusinessStatus = model.BusinessClosedTemporarily }, model.ReasonClosed},
		{"permanently closed", func(b *model.RestaurantSignalBundle) { b.BusinessStatus = model.BusinessClosedPermanently }, model.ReasonClosed},
		{"closed beats low rating", func(b *model.RestaurantSignalBundle) {
			b.BusinessStatus = model.BusinessClosedPermanently
			b.Rating = model.Float64(1.0)
		}, model.ReasonClosed},
		{"low rating", func(b *model.RestaurantSignalBundle) { b.Rating = model.Float64(2.9) }, model.ReasonLowRating},
		{"rating at minimum", func(b *model.RestaurantSignalBundle) { b.Rating = model.Float64(3.0) }, ""},
		{"low rating beats missing tags", func(b *model.RestaurantSignalBundle) {
			b.Rating = model.Float64(2.0)
			b.Types = nil
		}, model.ReasonLowRating},
		{"missing name", func(b *model.RestaurantSignalBundle) { b.Name = "  " }, model.ReasonInsufficientData},
		{"missing rating", func(b *model.RestaurantSignalBundle) { b.Rating = nil }, model.ReasonInsufficientData},
		{"missing tags", func(b *model.RestaurantSignalBundle) { b.Types = nil }, model.ReasonInsufficientData},
		{"unknown status is open", func(b *model.RestaurantSignalBundle) { b.BusinessStatus = model.BusinessStatusUnknown }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := sushiBundle("p1")
			tt.mutate(bundle)
			assert.Equal(t, tt.want, b.PreconditionReason(bundle))
		})
	}
}

func TestNoMenuBuilder_ExplicitPreconditionReason(t *testing.T) {
	b := NewNoMenuBuilder(3.0)

	bundle := &model.RestaurantSignalBundle{PlaceID: "p1", Name: "Corner Diner", Rating: model.Float64(1.5)}
	assert.Empty(t, b.ExplicitPreconditionReason(bundle), "rating and tags are not required")

	bundle.Name = ""
	assert.Equal(t, model.ReasonInsufficientData, b.ExplicitPreconditionReason(bundle))

	bundle.Name = "Corner Diner"
	bundle.BusinessStatus = model.BusinessClosedTemporarily
	assert.Equal(t, model.ReasonClosed, b.ExplicitPreconditionReason(bundle))
}

func TestNoMenuBuilder_Build(t *testing.T) {
	b := NewNoMenuBuilder(3.0)
	b.now = fixedClock

	bundle := sushiBundle("p1")
	resp := b.Build("p1", model.ReasonAllTiersExhausted, bundle, true)
	assert.True(t, resp.NoMenuAvailable)
	assert.True(t, resp.AISearchAvailable)
	assert.Equal(t, "Sushi Den", resp.RestaurantName)
	assert.Equal(t, "No menu could be found for this restaurant.", resp.ErrorMessage)
	assert.Equal(t, fixedNow, resp.LastUpdated)

	bundle.BusinessStatus = model.BusinessClosedTemporarily
	resp = b.Build("p1", model.ReasonClosed, bundle, true)
	assert.False(t, resp.AISearchAvailable, "closed never offers AI search")
	assert.Equal(t, "This restaurant is temporarily closed.", resp.ErrorMessage)

	bundle.BusinessStatus = model.BusinessClosedPermanently
	resp = b.Build("p1", model.ReasonClosed, bundle, false)
	assert.Equal(t, "This restaurant is permanently closed.", resp.ErrorMessage)

	resp = b.Build("p1", model.ReasonLookupError, nil, false)
	assert.Empty(t, resp.RestaurantName)
	assert.False(t, resp.AISearchAvailable)
	assert.Contains(t, resp.ErrorMessage, "try again")
}

func TestNoMenuBuilder_MessagesAreDistinct(t *testing.T) {
	seen := map[string]model.NoMenuReason{}
	for _, r := range []model.NoMenuReason{
		model.ReasonLowRating,
		model.ReasonInsufficientData,
		model.ReasonLookupError,
		model.ReasonAllTiersExhausted,
	} {
		msg := noMenuMessage(r, nil)
		assert.NotEmpty(t, msg)
		_, dup := seen[msg]
		assert.False(t, dup, "message for %s reused", r)
		seen[msg] = r
	}
}
