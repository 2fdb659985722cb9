package service

import (
	"menuengine/internal/model"
	"strings"
	"time"
)

// NoMenuBuilder produces failure payloads and evaluates the synthesis
// preconditions
type NoMenuBuilder struct {
	minRating float64
	now       func() time.Time
}

// NewNoMenuBuilder creates a builder; ratings below minRating block
// automatic synthesis
func NewNoMenuBuilder(minRating float64) *NoMenuBuilder {
	return &NoMenuBuilder{minRating: minRating, now: time.Now}
}

// PreconditionReason reports why automatic synthesis must not run, or "".
// Closed is checked first, then a low rating, then missing name, rating or
// category tags.
func (b *NoMenuBuilder) PreconditionReason(bundle *model.RestaurantSignalBundle) model.NoMenuReason {
	if bundle.BusinessStatus.IsClosed() {
		return model.ReasonClosed
	}
	if rating, ok := bundle.RatingValue(); ok && rating < b.minRating {
		return model.ReasonLowRating
	}
	if strings.TrimSpace(bundle.Name) == "" || bundle.Rating == nil || len(bundle.Types) == 0 {
		return model.ReasonInsufficientData
	}
	return ""
}

// ExplicitPreconditionReason is the relaxed gate for a caller-requested AI
// search: only a closed business or a missing name blocks it
func (b *NoMenuBuilder) ExplicitPreconditionReason(bundle *model.RestaurantSignalBundle) model.NoMenuReason {
	if bundle.BusinessStatus.IsClosed() {
		return model.ReasonClosed
	}
	if strings.TrimSpace(bundle.Name) == "" {
		return model.ReasonInsufficientData
	}
	return ""
}

// Build assembles a NoMenuResponse. A closed business never offers AI search.
func (b *NoMenuBuilder) Build(placeID string, reason model.NoMenuReason, bundle *model.RestaurantSignalBundle, aiSearchAvailable bool) *model.NoMenuResponse {
	resp := &model.NoMenuResponse{
		PlaceID:           placeID,
		NoMenuAvailable:   true,
		Reason:            reason,
		ErrorMessage:      noMenuMessage(reason, bundle),
		AISearchAvailable: aiSearchAvailable && reason != model.ReasonClosed,
		LastUpdated:       b.now().UTC(),
	}
	if bundle != nil {
		resp.RestaurantName = bundle.Name
	}
	return resp
}

func noMenuMessage(reason model.NoMenuReason, bundle *model.RestaurantSignalBundle) string {
	switch reason {
	case model.ReasonClosed:
		if bundle != nil && bundle.BusinessStatus == model.BusinessClosedTemporarily {
			return "This restaurant is temporarily closed."
		}
		return "This restaurant is permanently closed."
	case model.ReasonLowRating:
		return "This restaurant's rating is too low to estimate a menu."
	case model.ReasonInsufficientData:
		return "There is not enough information about this restaurant to find a menu."
	case model.ReasonLookupError:
		return "The menu could not be retrieved right now. Please try again later."
	default:
		return "No menu could be found for this restaurant."
	}
}
