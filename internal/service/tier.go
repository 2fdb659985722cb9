package service

import (
	"context"
	"menuengine/internal/model"
	"strconv"
	"strings"
)

// MenuTier is one stage of the resolution chain. Resolve returns
// (doc, nil) on success, (nil, nil) when the tier has no menu, and
// (nil, err) when the lookup itself failed.
type MenuTier interface {
	Source() model.MenuSource
	Resolve(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuDocument, error)
}

// GatedTier is a tier with preconditions on the signal bundle. A non-empty
// reason means the tier must be skipped.
type GatedTier interface {
	MenuTier
	Precondition(bundle *model.RestaurantSignalBundle, explicit bool) model.NoMenuReason
}

// sanitizeCategories drops unnamed or unpriced items and the categories left
// empty by that
func sanitizeCategories(categories []model.MenuCategory) []model.MenuCategory {
	out := make([]model.MenuCategory, 0, len(categories))
	for _, c := range categories {
		items := make([]model.MenuItem, 0, len(c.Items))
		for _, it := range c.Items {
			it.Name = strings.TrimSpace(it.Name)
			it.Description = strings.TrimSpace(it.Description)
			if it.Name == "" || it.Price <= 0 {
				continue
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "Menu"
		}
		out = append(out, model.MenuCategory{Name: name, Items: items})
	}
	return out
}

// parsePrice accepts JSON numbers and strings such as "$12.50", "1,200" or
// "€ 8,90". Strings whose separators could be read either way are rejected.
func parsePrice(v interface{}) (float64, bool) {
	switch p := v.(type) {
	case float64:
		return p, p > 0
	case int:
		return float64(p), p > 0
	case string:
		s := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == ',' {
				return r
			}
			return -1
		}, p)
		s, ok := normalizeDecimal(s)
		if !ok || s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f <= 0 {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// normalizeDecimal rewrites s, made of digits, '.' and ',', so the decimal
// separator is '.' and no grouping separators remain.
func normalizeDecimal(s string) (string, bool) {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastComma < 0:
		return s, true
	case lastDot < 0:
		// "8,90" or "12,5"
		if frac := s[lastComma+1:]; strings.Count(s, ",") == 1 && len(frac) >= 1 && len(frac) <= 2 {
			return s[:lastComma] + "." + frac, true
		}
		// "1,200"
		if groupedDigits(s, ',') {
			return strings.ReplaceAll(s, ",", ""), true
		}
	case lastDot > lastComma:
		// "1,234.50"
		if groupedDigits(s[:lastDot], ',') {
			return strings.ReplaceAll(s, ",", ""), true
		}
	default:
		// "1.234,50"
		intPart, frac := s[:lastComma], s[lastComma+1:]
		if len(frac) >= 1 && len(frac) <= 2 && groupedDigits(intPart, '.') {
			return strings.ReplaceAll(intPart, ".", "") + "." + frac, true
		}
	}
	return "", false
}

// groupedDigits reports whether s is digits split by sep into thousands
// groups, like "1,234,567".
func groupedDigits(s string, sep byte) bool {
	groups := strings.Split(s, string(sep))
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if i == 0 && (len(g) < 1 || len(g) > 3) {
			return false
		}
		if i > 0 && len(g) != 3 {
			return false
		}
		for j := 0; j < len(g); j++ {
			if g[j] < '0' || g[j] > '9' {
				return false
			}
		}
	}
	return true
}
