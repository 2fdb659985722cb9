package service

import (
	"menuengine/internal/model"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// cuisineRule maps tag and name evidence to a cuisine. Rules are evaluated
// top-down and the first match wins, so slice order is the tie-break order.
type cuisineRule struct {
	cuisine   model.Cuisine
	tagHints  []string
	nameHints []string
}

var cuisineRules = []cuisineRule{
	{
		cuisine:   model.CuisineJapanese,
		tagHints:  []string{"japanese", "sushi", "ramen"},
		nameHints: []string{"japanese", "sushi", "ramen", "izakaya", "udon", "tempura", "yakitori", "寿司", "鮨", "ラーメン", "居酒屋"},
	},
	{
		cuisine:   model.CuisineItalian,
		tagHints:  []string{"italian", "pizza"},
		nameHints: []string{"italian", "pasta", "pizza", "trattoria", "osteria", "ristorante", "パスタ"},
	},
	{
		cuisine:   model.CuisineChinese,
		tagHints:  []string{"chinese", "dim_sum"},
		nameHints: []string{"chinese", "dim sum", "dumpling", "szechuan", "sichuan", "wok", "中華", "餃子"},
	},
	{
		cuisine:   model.CuisineMexican,
		tagHints:  []string{"mexican", "taco"},
		nameHints: []string{"mexican", "taco", "taqueria", "burrito", "cantina"},
	},
	{
		cuisine:   model.CuisineThai,
		tagHints:  []string{"thai"},
		nameHints: []string{"thai", "bangkok", "タイ料理"},
	},
	{
		cuisine:   model.CuisineIndian,
		tagHints:  []string{"indian"},
		nameHints: []string{"indian", "curry", "tandoor", "masala", "biryani", "カレー"},
	},
	{
		cuisine:   model.CuisineKorean,
		tagHints:  []string{"korean"},
		nameHints: []string{"korean", "kimchi", "bibimbap", "bulgogi", "한식", "김치", "焼肉"},
	},
	{
		cuisine:   model.CuisineFrench,
		tagHints:  []string{"french"},
		nameHints: []string{"french", "bistro", "brasserie", "bistrot"},
	},
	{
		cuisine:   model.CuisineSeafood,
		tagHints:  []string{"seafood", "fish"},
		nameHints: []string{"seafood", "oyster", "lobster", "crab", "fish"},
	},
	{
		cuisine:   model.CuisineCafe,
		tagHints:  []string{"cafe", "coffee", "bakery"},
		nameHints: []string{"cafe", "café", "coffee", "espresso", "bakery", "patisserie", "カフェ", "카페"},
	},
	{
		cuisine:   model.CuisineFastFood,
		tagHints:  []string{"fast_food", "hamburger", "meal_takeaway"},
		nameHints: []string{"burger", "fried chicken", "drive-thru", "express"},
	},
}

// ClassificationEvidence records which rule decided a classification
type ClassificationEvidence struct {
	Cuisine model.Cuisine `json:"cuisine"`
	Source  string        `json:"source"` // pre-tag, tag, name or default
	Match   string        `json:"match,omitempty"`
}

// Classifier infers a cuisine from a signal bundle. Structured tags are
// trusted over name heuristics.
type Classifier struct {
	rules []cuisineRule
}

// NewClassifier creates a classifier with the built-in rule list
func NewClassifier() *Classifier {
	rules := make([]cuisineRule, len(cuisineRules))
	for i, r := range cuisineRules {
		rules[i] = cuisineRule{
			cuisine:   r.cuisine,
			tagHints:  normalizeAll(r.tagHints),
			nameHints: normalizeAll(r.nameHints),
		}
	}
	return &Classifier{rules: rules}
}

// Classify returns the cuisine for a bundle
func (c *Classifier) Classify(bundle *model.RestaurantSignalBundle) model.Cuisine {
	return c.Explain(bundle).Cuisine
}

// Explain classifies and reports the evidence used
func (c *Classifier) Explain(bundle *model.RestaurantSignalBundle) ClassificationEvidence {
	if bundle == nil {
		return ClassificationEvidence{Cuisine: model.CuisineAmerican, Source: "default"}
	}
	if bundle.RestaurantType.IsKnown() {
		return ClassificationEvidence{Cuisine: bundle.RestaurantType, Source: "pre-tag"}
	}

	tags := normalizeAll(bundle.Types)
	for _, rule := range c.rules {
		for _, tag := range tags {
			if hint, ok := containsAny(tag, rule.tagHints); ok {
				return ClassificationEvidence{Cuisine: rule.cuisine, Source: "tag", Match: hint}
			}
		}
	}

	name := normalizeText(bundle.Name)
	if name != "" {
		for _, rule := range c.rules {
			if hint, ok := containsAny(name, rule.nameHints); ok {
				return ClassificationEvidence{Cuisine: rule.cuisine, Source: "name", Match: hint}
			}
		}
	}

	return ClassificationEvidence{Cuisine: model.CuisineAmerican, Source: "default"}
}

// normalizeText folds case and compatibility forms so that mixed-language
// text compares by substring. A Caser is stateful, so one is built per call.
func normalizeText(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := normalizeText(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) (string, bool) {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return n, true
		}
	}
	return "", false
}
