package service

import (
	"context"
	"fmt"
	"log/slog"
	"menuengine/internal/model"
	"strings"
)

// MenuGenerator asks a language model for menu categories
type MenuGenerator interface {
	Enabled() bool
	GenerateMenu(ctx context.Context, prompt string) ([]model.MenuCategory, error)
}

// AISynthesisTier estimates a menu from the restaurant's signals. With a
// generator configured it asks the model first; otherwise, or when the
// model's answer is unusable and fallback is on, it adjusts the cuisine
// template.
type AISynthesisTier struct {
	generator        MenuGenerator
	classifier       *Classifier
	library          *TemplateLibrary
	adjuster         *SynthesisAdjuster
	keywords         *KeywordExtractor
	gate             *NoMenuBuilder
	templateFallback bool
	logger           *slog.Logger
}

// NewAISynthesisTier creates Tier 3. generator may be nil.
func NewAISynthesisTier(generator MenuGenerator, classifier *Classifier, library *TemplateLibrary, adjuster *SynthesisAdjuster, keywords *KeywordExtractor, gate *NoMenuBuilder, templateFallback bool) *AISynthesisTier {
	return &AISynthesisTier{
		generator:        generator,
		classifier:       classifier,
		library:          library,
		adjuster:         adjuster,
		keywords:         keywords,
		gate:             gate,
		templateFallback: templateFallback,
		logger:           slog.Default().With("component", "ai_tier"),
	}
}

func (t *AISynthesisTier) Source() model.MenuSource {
	return model.SourceAISynthesis
}

// Precondition implements GatedTier
func (t *AISynthesisTier) Precondition(bundle *model.RestaurantSignalBundle, explicit bool) model.NoMenuReason {
	if explicit {
		return t.gate.ExplicitPreconditionReason(bundle)
	}
	return t.gate.PreconditionReason(bundle)
}

func (t *AISynthesisTier) Resolve(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuDocument, error) {
	cuisine := t.classifier.Classify(bundle)

	if t.generator != nil && t.generator.Enabled() {
		doc, err := t.generate(ctx, bundle, cuisine)
		if err == nil && doc != nil {
			return doc, nil
		}
		if !t.templateFallback {
			return nil, err
		}
		if err != nil {
			t.logger.Warn("model synthesis failed, using template", "place_id", placeID, "error", err)
		}
	} else if !t.templateFallback {
		return nil, nil
	}

	return t.adjuster.Adjust(t.library.TemplateFor(cuisine), bundle)
}

func (t *AISynthesisTier) generate(ctx context.Context, bundle *model.RestaurantSignalBundle, cuisine model.Cuisine) (*model.MenuDocument, error) {
	prompt := t.buildMenuPrompt(bundle, cuisine)
	generated, err := t.generator.GenerateMenu(ctx, prompt)
	if err != nil {
		return nil, err
	}

	categories := sanitizeCategories(generated)
	if len(categories) == 0 {
		// the model declined
		return nil, nil
	}

	doc := &model.MenuDocument{RestaurantType: cuisine, Categories: categories}
	return t.adjuster.Annotate(doc, bundle), nil
}

func (t *AISynthesisTier) buildMenuPrompt(bundle *model.RestaurantSignalBundle, cuisine model.Cuisine) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Restaurant: %s\n", bundle.Name)
	fmt.Fprintf(&sb, "Cuisine: %s\n", cuisine)
	if bundle.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", bundle.Address)
	}
	if rating, ok := bundle.RatingValue(); ok {
		fmt.Fprintf(&sb, "Rating: %.1f from %d reviews\n", rating, bundle.UserRatingsTotal)
	}
	fmt.Fprintf(&sb, "Price level (0-4): %d\n", bundle.PriceLevelValue())

	kw := t.keywords.Extract(bundle.Reviews)
	if len(kw.Foods) > 0 {
		fmt.Fprintf(&sb, "Dishes mentioned in reviews: %s\n", strings.Join(kw.Foods, ", "))
	}
	for i, r := range bundle.Reviews {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "Review: %s\n", truncateRunes(r.Text, 200))
	}

	return fmt.Sprintf(`You are estimating the menu of a restaurant that does not publish one. Return ONLY valid JSON matching this schema:
{
  "categories": [
    {"name": "category name", "items": [{"name": "dish", "description": "one sentence", "price": 12.5}]}
  ]
}

Use 2 to 3 categories with 2 to 4 items each. Prices are numbers in %s.
If you cannot make a reasonable estimate return {"categories": []}.

%s`, t.adjuster.currency, sb.String())
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
