package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"menuengine/internal/model"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxPlacesResponseBytes = 1 << 20

// PlacesClient fetches listed menus from the place-data provider
type PlacesClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPlacesClient creates a client for baseURL. The per-request deadline
// comes from the caller's context.
func NewPlacesClient(baseURL, apiKey string, timeout time.Duration) *PlacesClient {
	return &PlacesClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type placesMenuResponse struct {
	Currency  string `json:"currency"`
	UpdatedAt string `json:"updatedAt"`
	Sections  []struct {
		Name  string `json:"name"`
		Items []struct {
			Name        string      `json:"name"`
			Description string      `json:"description"`
			Price       interface{} `json:"price"`
		} `json:"items"`
	} `json:"sections"`
}

// GetMenu implements ProviderMenuSource. 404 means the place lists no menu.
func (c *PlacesClient) GetMenu(ctx context.Context, placeID string) (*model.ProviderMenu, error) {
	endpoint := fmt.Sprintf("%s/places/%s/menu", c.baseURL, url.PathEscape(placeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places menu request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places menu request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlacesResponseBytes))
	if err != nil {
		return nil, err
	}

	var payload placesMenuResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode places menu: %w", err)
	}

	pm := &model.ProviderMenu{
		PlaceID:  placeID,
		Currency: payload.Currency,
	}
	if t, err := time.Parse(time.RFC3339, payload.UpdatedAt); err == nil {
		pm.UpdatedAt = t
	}
	for _, s := range payload.Sections {
		cat := model.MenuCategory{Name: s.Name}
		for _, it := range s.Items {
			price, ok := parsePrice(it.Price)
			if !ok {
				continue
			}
			cat.Items = append(cat.Items, model.MenuItem{
				Name:        it.Name,
				Description: it.Description,
				Price:       price,
			})
		}
		pm.Categories = append(pm.Categories, cat)
	}
	return pm, nil
}
