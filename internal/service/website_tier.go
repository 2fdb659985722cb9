package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"menuengine/internal/model"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"
)

const maxWebsiteBytes = 2 << 20

// WebsiteTier reads schema.org Menu markup embedded as JSON-LD in the
// restaurant's own website
type WebsiteTier struct {
	client   *http.Client
	currency string
	logger   *slog.Logger

	// dialGuard vets every "ip:port" the tier connects to, including
	// redirect targets. nil allows all addresses.
	dialGuard func(address string) error
}

// NewWebsiteTier creates Tier 2. Private and loopback hosts are refused.
func NewWebsiteTier(currency string, timeout time.Duration) *WebsiteTier {
	t := &WebsiteTier{
		currency:  currency,
		logger:    slog.Default().With("component", "website_tier"),
		dialGuard: publicAddressOnly,
	}
	dialer := &net.Dialer{
		Timeout: timeout,
		Control: func(_, address string, _ syscall.RawConn) error {
			if t.dialGuard == nil {
				return nil
			}
			return t.dialGuard(address)
		},
	}
	t.client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			ForceAttemptHTTP2:   true,
			TLSHandshakeTimeout: timeout,
			MaxIdleConns:        16,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: t.checkRedirect,
	}
	return t
}

func (t *WebsiteTier) Source() model.MenuSource {
	return model.SourceWebsite
}

// Resolve fetches the website and, when it only links to a separate menu
// page through hasMenu, that page as well
func (t *WebsiteTier) Resolve(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuDocument, error) {
	site := strings.TrimSpace(bundle.Website)
	if site == "" {
		return nil, nil
	}

	page, err := t.fetch(ctx, site)
	if err != nil {
		return nil, err
	}
	found := extractMenu(page.body)
	if len(found.categories) == 0 && found.menuURL != "" {
		next, err := page.base.Parse(found.menuURL)
		if err != nil {
			return nil, nil
		}
		page, err = t.fetch(ctx, next.String())
		if err != nil {
			return nil, err
		}
		found = extractMenu(page.body)
	}

	categories := sanitizeCategories(found.categories)
	if len(categories) == 0 {
		t.logger.Debug("no menu markup on website", "place_id", placeID, "url", site)
		return nil, nil
	}
	currency := found.currency
	if currency == "" {
		currency = t.currency
	}
	return &model.MenuDocument{
		PlaceID:    placeID,
		Categories: categories,
		Currency:   currency,
		Source:     model.SourceWebsite,
	}, nil
}

type fetchedPage struct {
	base *url.URL
	body []byte
}

func (t *WebsiteTier) fetch(ctx context.Context, rawURL string) (*fetchedPage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid website url %q", rawURL)
	}
	if err := t.checkHost(ctx, u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "MenuEngine/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch website: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch website: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebsiteBytes))
	if err != nil {
		return nil, err
	}
	return &fetchedPage{base: resp.Request.URL, body: body}, nil
}

func (t *WebsiteTier) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 5 {
		return errors.New("too many redirects")
	}
	return t.checkHost(req.Context(), req.URL)
}

// checkHost resolves the URL's host and runs every address through the
// dial guard, so refusals surface before a connection is attempted
func (t *WebsiteTier) checkHost(ctx context.Context, u *url.URL) error {
	if t.dialGuard == nil {
		return nil
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, u.Hostname())
	if err != nil {
		return fmt.Errorf("resolve %s: %w", u.Hostname(), err)
	}
	for _, addr := range addrs {
		if err := t.dialGuard(net.JoinHostPort(addr.IP.String(), port)); err != nil {
			return err
		}
	}
	return nil
}

func publicAddressOnly(address string) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("website address %q is not an IP", address)
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("website host resolves to private address %s", ip)
	}
	return nil
}

type extractedMenu struct {
	categories []model.MenuCategory
	currency   string
	menuURL    string
}

// extractMenu parses every application/ld+json script in the page
func extractMenu(page []byte) extractedMenu {
	var out extractedMenu
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return out
	}
	for _, script := range jsonLDScripts(doc) {
		var data interface{}
		if err := json.Unmarshal([]byte(script), &data); err != nil {
			continue
		}
		collectMenus(data, &out)
	}
	return out
}

func jsonLDScripts(n *html.Node) []string {
	var scripts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && isJSONLD(n) {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			scripts = append(scripts, sb.String())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return scripts
}

func isJSONLD(n *html.Node) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "type") && strings.EqualFold(strings.TrimSpace(a.Val), "application/ld+json") {
			return true
		}
	}
	return false
}

func collectMenus(v interface{}, out *extractedMenu) {
	switch node := v.(type) {
	case []interface{}:
		for _, child := range node {
			collectMenus(child, out)
		}
	case map[string]interface{}:
		if hasType(node, "Menu") {
			out.categories = append(out.categories, menuSections(node, out)...)
			return
		}
		if link, ok := node["hasMenu"].(string); ok && out.menuURL == "" {
			out.menuURL = link
		}
		keys := make([]string, 0, len(node))
		for key := range node {
			if key != "@context" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectMenus(node[key], out)
		}
	}
}

func menuSections(node map[string]interface{}, out *extractedMenu) []model.MenuCategory {
	var cats []model.MenuCategory
	if items := menuItems(node["hasMenuItem"], out); len(items) > 0 {
		cats = append(cats, model.MenuCategory{Name: stringField(node, "name"), Items: items})
	}
	for _, s := range asList(node["hasMenuSection"]) {
		section, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		cats = append(cats, menuSections(section, out)...)
	}
	return cats
}

func menuItems(v interface{}, out *extractedMenu) []model.MenuItem {
	var items []model.MenuItem
	for _, raw := range asList(v) {
		node, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		price, ok := parsePrice(node["price"])
		for _, o := range asList(node["offers"]) {
			offer, isMap := o.(map[string]interface{})
			if !isMap {
				continue
			}
			if p, found := parsePrice(offer["price"]); found {
				price, ok = p, true
				if c := stringField(offer, "priceCurrency"); c != "" && out.currency == "" {
					out.currency = c
				}
				break
			}
		}
		if !ok {
			continue
		}
		items = append(items, model.MenuItem{
			Name:        stringField(node, "name"),
			Description: stringField(node, "description"),
			Price:       price,
		})
	}
	return items
}

func hasType(node map[string]interface{}, want string) bool {
	for _, t := range asList(node["@type"]) {
		if s, ok := t.(string); ok && (s == want || strings.HasSuffix(s, "/"+want)) {
			return true
		}
	}
	return false
}

func asList(v interface{}) []interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return x
	default:
		return []interface{}{x}
	}
}

func stringField(node map[string]interface{}, key string) string {
	s, _ := node[key].(string)
	return strings.TrimSpace(s)
}
