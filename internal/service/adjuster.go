package service

import (
	"fmt"
	"menuengine/internal/model"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

type ratingBand struct {
	min  float64
	mult *apd.Decimal
}

// Ordered from the highest band down; the first band whose minimum the
// rating reaches applies.
var ratingBands = []ratingBand{
	{min: 4.5, mult: apd.New(12, -1)},
	{min: 4.0, mult: apd.New(11, -1)},
	{min: 3.5, mult: apd.New(10, -1)},
	{min: 3.0, mult: apd.New(9, -1)},
	{min: 0, mult: apd.New(8, -1)},
}

var priceTierMultipliers = map[int]*apd.Decimal{
	0: apd.New(7, -1),
	1: apd.New(85, -2),
	2: apd.New(10, -1),
	3: apd.New(12, -1),
	4: apd.New(15, -1),
}

var unitMultiplier = apd.New(1, 0)

// Truncation thresholds on the review count, highest first
var itemLimits = []struct {
	minReviews int
	perSection int
}{
	{minReviews: 500, perSection: 6},
	{minReviews: 100, perSection: 4},
	{minReviews: 0, perSection: 3},
}

// priceContext does exact decimal arithmetic with half-up rounding
var priceContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

// SynthesisAdjuster turns a base template into a menu tailored to one
// restaurant's signals
type SynthesisAdjuster struct {
	keywords *KeywordExtractor
	currency string
	now      func() time.Time
}

// NewSynthesisAdjuster creates an adjuster pricing menus in currency
func NewSynthesisAdjuster(keywords *KeywordExtractor, currency string) *SynthesisAdjuster {
	return &SynthesisAdjuster{
		keywords: keywords,
		currency: currency,
		now:      time.Now,
	}
}

// Adjust scales template prices by the rating and price-tier multipliers and
// then annotates the result. base is not modified.
func (a *SynthesisAdjuster) Adjust(base *model.MenuDocument, bundle *model.RestaurantSignalBundle) (*model.MenuDocument, error) {
	doc := base.Clone()
	ratingMult := RatingMultiplier(bundle.Rating)
	tierMult := PriceTierMultiplier(bundle.PriceLevelValue())

	for ci := range doc.Categories {
		items := doc.Categories[ci].Items
		for ii := range items {
			price, err := scalePrice(items[ii].Price, ratingMult, tierMult)
			if err != nil {
				return nil, fmt.Errorf("adjust price of %s: %w", items[ii].Name, err)
			}
			items[ii].Price = price
		}
	}
	return a.Annotate(doc, bundle), nil
}

// Annotate enriches descriptions, truncates sections by review volume, and
// stamps synthesis metadata. Prices are left alone.
func (a *SynthesisAdjuster) Annotate(doc *model.MenuDocument, bundle *model.RestaurantSignalBundle) *model.MenuDocument {
	out := doc.Clone()
	kw := a.keywords.Extract(bundle.Reviews)
	limit := ItemsPerSection(bundle.UserRatingsTotal)
	rating, hasRating := bundle.RatingValue()

	sentiment := ""
	if len(kw.Sentiments) > 0 {
		sentiment = kw.Sentiments[0]
	}

	for ci := range out.Categories {
		items := out.Categories[ci].Items
		if len(items) > limit {
			items = items[:limit]
		}
		for ii := range items {
			item := &items[ii]
			food, mentioned := mentionedFood(item, kw.Foods)
			item.Description = describe(item.Description, rating, hasRating, bundle.UserRatingsTotal, sentiment)
			if mentioned {
				item.Provenance = food
				item.Description = strings.TrimSpace(sentence(item.Description) + " Often mentioned in reviews.")
			}
			item.AIRecommended = true
		}
		out.Categories[ci].Items = items
	}

	out.PlaceID = bundle.PlaceID
	out.Source = model.SourceAISynthesis
	out.AIGenerated = true
	out.Currency = a.currency
	out.LastUpdated = a.now().UTC()
	out.Rating = bundle.Rating
	out.PriceLevel = bundle.PriceLevel
	out.UserRatingsTotal = bundle.UserRatingsTotal
	return out
}

// RatingMultiplier returns the price multiplier for a rating. A missing
// rating is neutral.
func RatingMultiplier(rating *float64) *apd.Decimal {
	if rating == nil {
		return unitMultiplier
	}
	for _, band := range ratingBands {
		if *rating >= band.min {
			return band.mult
		}
	}
	return ratingBands[len(ratingBands)-1].mult
}

// PriceTierMultiplier returns the price multiplier for a price tier 0-4
func PriceTierMultiplier(level int) *apd.Decimal {
	if m, ok := priceTierMultipliers[level]; ok {
		return m
	}
	return unitMultiplier
}

// ItemsPerSection is the maximum number of items kept per category
func ItemsPerSection(reviewCount int) int {
	for _, l := range itemLimits {
		if reviewCount >= l.minReviews {
			return l.perSection
		}
	}
	return itemLimits[len(itemLimits)-1].perSection
}

func scalePrice(base float64, multipliers ...*apd.Decimal) (float64, error) {
	var d apd.Decimal
	if _, err := d.SetFloat64(base); err != nil {
		return 0, err
	}
	for _, m := range multipliers {
		if _, err := priceContext.Mul(&d, &d, m); err != nil {
			return 0, err
		}
	}
	if _, err := priceContext.Quantize(&d, &d, -2); err != nil {
		return 0, err
	}
	return d.Float64()
}

func describe(base string, rating float64, hasRating bool, reviewCount int, sentiment string) string {
	praise := ""
	if sentiment != "" {
		praise = ", praised as " + sentiment
	}
	switch {
	case hasRating && rating >= 4.5:
		return strings.TrimSpace(fmt.Sprintf("Top-tier pick rated %.1f from %d reviews%s. %s", rating, reviewCount, praise, base))
	case hasRating && rating >= 4.0:
		return strings.TrimSpace(fmt.Sprintf("Quality choice%s. %s", praise, base))
	default:
		return base
	}
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}

func mentionedFood(item *model.MenuItem, foods []string) (string, bool) {
	if len(foods) == 0 {
		return "", false
	}
	name := normalizeText(item.Name)
	for _, f := range foods {
		if strings.Contains(name, normalizeText(f)) {
			return f, true
		}
	}
	return "", false
}
