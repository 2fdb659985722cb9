package service

import (
	"context"
	"log/slog"
	"menuengine/internal/model"
)

// ProviderMenuSource looks up an authoritative menu for a place. A place with
// no listed menu yields (nil, nil).
type ProviderMenuSource interface {
	GetMenu(ctx context.Context, placeID string) (*model.ProviderMenu, error)
}

// AuthoritativeTier asks each provider source in turn and returns the first
// usable menu
type AuthoritativeTier struct {
	sources  []ProviderMenuSource
	currency string
	logger   *slog.Logger
}

// NewAuthoritativeTier creates Tier 1 over the given sources. Nil sources are
// skipped.
func NewAuthoritativeTier(currency string, sources ...ProviderMenuSource) *AuthoritativeTier {
	t := &AuthoritativeTier{
		currency: currency,
		logger:   slog.Default().With("component", "authoritative_tier"),
	}
	for _, s := range sources {
		if s != nil {
			t.sources = append(t.sources, s)
		}
	}
	return t
}

func (t *AuthoritativeTier) Source() model.MenuSource {
	return model.SourceAuthoritative
}

// Resolve returns a lookup error only when no source produced a menu and at
// least one of them failed
func (t *AuthoritativeTier) Resolve(ctx context.Context, placeID string, _ *model.RestaurantSignalBundle) (*model.MenuDocument, error) {
	var firstErr error
	for _, src := range t.sources {
		pm, err := src.GetMenu(ctx, placeID)
		if err != nil {
			t.logger.Warn("provider lookup failed", "place_id", placeID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if pm == nil {
			continue
		}

		categories := sanitizeCategories(pm.Categories)
		if len(categories) == 0 {
			continue
		}
		currency := pm.Currency
		if currency == "" {
			currency = t.currency
		}
		return &model.MenuDocument{
			PlaceID:     placeID,
			Categories:  categories,
			Currency:    currency,
			LastUpdated: pm.UpdatedAt,
			Source:      model.SourceAuthoritative,
		}, nil
	}
	return nil, firstErr
}
