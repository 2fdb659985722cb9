package service

import (
	"context"
	"errors"
	"fmt"
	"menuengine/internal/model"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inlineMenuPage = `<!doctype html>
<html><head>
<title>Trattoria Roma</title>
<script type="application/ld+json">{"@context": "https://schema.org", "@type": "WebSite", "name": "Roma"}</script>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Restaurant",
  "name": "Trattoria Roma",
  "hasMenu": {
    "@type": "Menu",
    "hasMenuSection": [
      {
        "@type": "MenuSection",
        "name": "Pasta",
        "hasMenuItem": [
          {"@type": "MenuItem", "name": "Cacio e Pepe", "description": "Pecorino and pepper",
           "offers": {"@type": "Offer", "price": "14.00", "priceCurrency": "EUR"}},
          {"@type": "MenuItem", "name": "Amatriciana", "offers": [{"@type": "Offer", "price": 15}]},
          {"@type": "MenuItem", "name": "Market Special"}
        ]
      },
      {
        "@type": "MenuSection",
        "name": "Dolci",
        "hasMenuItem": {"@type": "MenuItem", "name": "Tiramisu", "price": 7}
      }
    ]
  }
}
</script>
</head><body><h1>Welcome</h1></body></html>`

const linkedMenuPage = `<html><head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@type": "Restaurant", "name": "Taqueria", "hasMenu": "/menu"}
</script></head><body></body></html>`

const menuOnlyPage = `<html><head>
<script type="application/ld+json">
[{"@type": "Menu", "name": "Tacos", "hasMenuItem": [{"name": "Al Pastor", "offers": {"price": "3.50"}}]}]
</script></head></html>`

func newTestWebsiteTier() *WebsiteTier {
	tier := NewWebsiteTier("USD", 2*time.Second)
	tier.dialGuard = nil
	return tier
}

func websiteBundle(url string) *model.RestaurantSignalBundle {
	b := sushiBundle("p1")
	b.Website = url
	return b
}

func TestWebsiteTier_InlineMenu(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MenuEngine/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, inlineMenuPage)
	}))
	defer srv.Close()

	doc, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle(srv.URL))
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, model.SourceWebsite, doc.Source)
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, []model.MenuCategory{
		{Name: "Pasta", Items: []model.MenuItem{
			{Name: "Cacio e Pepe", Description: "Pecorino and pepper", Price: 14},
			{Name: "Amatriciana", Price: 15},
		}},
		{Name: "Dolci", Items: []model.MenuItem{{Name: "Tiramisu", Price: 7}}},
	}, doc.Categories)
}

func TestWebsiteTier_FollowsMenuLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, linkedMenuPage) })
	mux.HandleFunc("/menu", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, menuOnlyPage) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle(srv.URL+"/"))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "USD", doc.Currency)
	assert.Equal(t, "Tacos", doc.Categories[0].Name)
	assert.Equal(t, 3.5, doc.Categories[0].Items[0].Price)
}

func TestWebsiteTier_NoMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Call us for the menu</p><script>var x = 1;</script></body></html>`)
	}))
	defer srv.Close()

	doc, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle(srv.URL))
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestWebsiteTier_NoWebsite(t *testing.T) {
	doc, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle("  "))
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestWebsiteTier_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle(srv.URL))
	assert.ErrorContains(t, err, "unexpected status 503")

	_, err = newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle("ftp://example.com/menu"))
	assert.ErrorContains(t, err, "invalid website url")
}

func TestWebsiteTier_RefusesPrivateHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("private host must not be fetched")
	}))
	defer srv.Close()

	tier := NewWebsiteTier("USD", time.Second)
	_, err := tier.Resolve(context.Background(), "p1", websiteBundle(srv.URL))
	assert.ErrorContains(t, err, "private address")

	// the transport refuses the dialled address even when no lookup ran first
	transport := tier.client.Transport.(*http.Transport)
	_, err = transport.DialContext(context.Background(), "tcp", srv.Listener.Addr().String())
	assert.ErrorContains(t, err, "private address")

	prev := httptest.NewRequest(http.MethodGet, "http://menu.example.com/", nil)
	next := httptest.NewRequest(http.MethodGet, srv.URL+"/admin", nil)
	assert.ErrorContains(t, tier.client.CheckRedirect(next, []*http.Request{prev}), "private address")
}

func TestWebsiteTier_RefusesRedirectToBlockedHost(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect target must not be fetched")
	}))
	defer internal.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/latest/meta-data", http.StatusFound)
	}))
	defer site.Close()

	blocked := internal.Listener.Addr().String()
	tier := newTestWebsiteTier()
	tier.dialGuard = func(address string) error {
		if address == blocked {
			return fmt.Errorf("website host resolves to private address %s", address)
		}
		return nil
	}

	doc, err := tier.Resolve(context.Background(), "p1", websiteBundle(site.URL))
	assert.Nil(t, doc)
	assert.ErrorContains(t, err, "private address")
}

func TestWebsiteTier_RedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newTestWebsiteTier().Resolve(context.Background(), "p1", websiteBundle(srv.URL+"/"))
	assert.ErrorContains(t, err, "too many redirects")
}

func TestPublicAddressOnly(t *testing.T) {
	tests := []struct {
		address string
		wantErr bool
	}{
		{"93.184.216.34:443", false},
		{"[2606:2800:220:1:248:1893:25c8:1946]:80", false},
		{"8.8.8.8", false},
		{"127.0.0.1:80", true},
		{"10.1.2.3:8080", true},
		{"192.168.0.10:80", true},
		{"169.254.169.254:80", true},
		{"0.0.0.0:80", true},
		{"[::1]:443", true},
		{"[fe80::1]:443", true},
		{"menu.example.com:80", true},
	}

	for _, tt := range tests {
		err := publicAddressOnly(tt.address)
		if tt.wantErr {
			assert.Error(t, err, tt.address)
		} else {
			assert.NoError(t, err, tt.address)
		}
	}
}

func TestWebsiteTier_ChecksHostWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tier := NewWebsiteTier("USD", time.Second)
	_, err := tier.Resolve(ctx, "p1", websiteBundle("http://menu.invalid/"))
	var dnsErr *net.DNSError
	if !assert.Error(t, err) {
		return
	}
	assert.True(t, errors.Is(err, context.Canceled) || errors.As(err, &dnsErr), err.Error())
}

func TestExtractMenu_IgnoresBrokenJSON(t *testing.T) {
	page := `<script type="application/ld+json">{not json</script>` + menuOnlyPage
	found := extractMenu([]byte(page))
	require.Len(t, found.categories, 1)
	assert.Equal(t, "Al Pastor", found.categories[0].Items[0].Name)
}

func TestExtractMenu_StableOrder(t *testing.T) {
	page := `<script type="application/ld+json">
{"@type": "Restaurant",
 "menu": {"@type": "Menu", "name": "Dinner", "hasMenuItem": [{"name": "Steak", "price": 30}]},
 "hasMenu": {"@type": "Menu", "name": "Lunch", "hasMenuItem": [{"name": "Soup", "price": 8}]},
 "acceptsReservations": "True",
 "subOrganization": {"@type": "Restaurant", "hasMenu": "/bar-menu"},
 "department": {"@type": "Restaurant", "hasMenu": "/cafe-menu"}}
</script>`

	first := extractMenu([]byte(page))
	require.Len(t, first.categories, 2)
	assert.Equal(t, "Lunch", first.categories[0].Name)
	assert.Equal(t, "Dinner", first.categories[1].Name)
	assert.Equal(t, "/cafe-menu", first.menuURL)

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, extractMenu([]byte(page)))
	}
}
