package service

import (
	"context"
	"errors"
	"fmt"
	"menuengine/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMenuSource struct {
	menu  *model.ProviderMenu
	err   error
	calls int
}

func (s *stubMenuSource) GetMenu(_ context.Context, _ string) (*model.ProviderMenu, error) {
	s.calls++
	return s.menu, s.err
}

func providerMenu(placeID string) *model.ProviderMenu {
	return &model.ProviderMenu{
		PlaceID:   placeID,
		Currency:  "EUR",
		UpdatedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Categories: []model.MenuCategory{
			{Name: "Pizza", Items: []model.MenuItem{{Name: "Margherita", Price: 11}}},
		},
	}
}

func TestAuthoritativeTier_FirstUsableSource(t *testing.T) {
	failing := &stubMenuSource{err: errors.New("upstream down")}
	empty := &stubMenuSource{}
	listed := &stubMenuSource{menu: providerMenu("p1")}
	never := &stubMenuSource{menu: providerMenu("p1")}

	tier := NewAuthoritativeTier("USD", failing, nil, empty, listed, never)
	doc, err := tier.Resolve(context.Background(), "p1", sushiBundle("p1"))

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, model.SourceAuthoritative, doc.Source)
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, "Margherita", doc.Categories[0].Items[0].Name)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 0, never.calls)
}

func TestAuthoritativeTier_Absent(t *testing.T) {
	unusable := &stubMenuSource{menu: &model.ProviderMenu{
		Categories: []model.MenuCategory{{Name: "Drinks", Items: []model.MenuItem{{Name: "Water", Price: 0}}}},
	}}
	tier := NewAuthoritativeTier("USD", &stubMenuSource{}, unusable)

	doc, err := tier.Resolve(context.Background(), "p1", nil)
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestAuthoritativeTier_ErrorWhenNothingFound(t *testing.T) {
	boom := errors.New("upstream down")
	tier := NewAuthoritativeTier("USD", &stubMenuSource{}, &stubMenuSource{err: boom})

	doc, err := tier.Resolve(context.Background(), "p1", nil)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, doc)
}

func TestAuthoritativeTier_DefaultCurrency(t *testing.T) {
	pm := providerMenu("p1")
	pm.Currency = ""
	tier := NewAuthoritativeTier("USD", &stubMenuSource{menu: pm})

	doc, err := tier.Resolve(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "USD", doc.Currency)
}

func TestPlacesClient_GetMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		switch r.URL.Path {
		case "/places/listed/menu":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"currency": "JPY",
				"updatedAt": "2026-09-30T10:00:00Z",
				"sections": [
					{"name": "Ramen", "items": [
						{"name": "Shoyu Ramen", "description": "Soy broth", "price": 950},
						{"name": "Shio Ramen", "price": "¥900"},
						{"name": "Seasonal", "price": "ask staff"}
					]}
				]
			}`)
		case "/places/missing/menu":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewPlacesClient(srv.URL+"/", "secret", time.Second)

	pm, err := c.GetMenu(context.Background(), "listed")
	require.NoError(t, err)
	require.NotNil(t, pm)
	assert.Equal(t, "JPY", pm.Currency)
	assert.Equal(t, time.Date(2026, 9, 30, 10, 0, 0, 0, time.UTC), pm.UpdatedAt)
	require.Len(t, pm.Categories, 1)
	assert.Equal(t, []model.MenuItem{
		{Name: "Shoyu Ramen", Description: "Soy broth", Price: 950},
		{Name: "Shio Ramen", Price: 900},
	}, pm.Categories[0].Items)

	pm, err = c.GetMenu(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, pm)

	_, err = c.GetMenu(context.Background(), "broken")
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestPlacesClient_ThroughTier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sections":[{"name":"","items":[{"name":"Burger","price":12.5}]}]}`)
	}))
	defer srv.Close()

	tier := NewAuthoritativeTier("USD", NewPlacesClient(srv.URL, "", time.Second))
	doc, err := tier.Resolve(context.Background(), "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Menu", doc.Categories[0].Name)
	assert.Equal(t, "USD", doc.Currency)
}

func TestPlacesClient_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewPlacesClient(srv.URL, "", time.Minute).GetMenu(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
