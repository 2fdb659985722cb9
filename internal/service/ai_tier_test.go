package service

import (
	"context"
	"errors"
	"menuengine/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	enabled  bool
	response string
	err      error
	prompts  []string
}

func (g *fakeGenerator) Enabled() bool { return g.enabled }

func (g *fakeGenerator) GenerateMenu(_ context.Context, prompt string) ([]model.MenuCategory, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return decodeGeneratedMenu(g.response)
}

func newTestAITier(t *testing.T, gen MenuGenerator, fallback bool) *AISynthesisTier {
	t.Helper()
	cat := testCatalog(t)
	keywords := NewKeywordExtractor(cat.Vocabulary)
	adjuster := NewSynthesisAdjuster(keywords, "USD")
	adjuster.now = fixedClock
	return NewAISynthesisTier(gen, NewClassifier(), NewTemplateLibrary(cat), adjuster, keywords, NewNoMenuBuilder(3.0), fallback)
}

const generatedJSON = "```json\n" + `{
  "categories": [
    {"name": "Nigiri", "items": [
      {"name": "Salmon Nigiri", "description": "Fresh salmon", "price": 7.5},
      {"name": "Otoro", "description": "Fatty tuna", "price": "$15"},
      {"name": "Mystery", "price": "market"}
    ]},
    {"name": "Empty", "items": []}
  ]
}` + "\n```"

func TestAISynthesisTier_ModelMenu(t *testing.T) {
	gen := &fakeGenerator{enabled: true, response: generatedJSON}
	tier := newTestAITier(t, gen, true)

	doc, err := tier.Resolve(context.Background(), "p1", sushiBundle("p1"))
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, model.SourceAISynthesis, doc.Source)
	assert.True(t, doc.AIGenerated)
	assert.Equal(t, model.CuisineJapanese, doc.RestaurantType)
	require.Len(t, doc.Categories, 1)
	items := doc.Categories[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, 7.5, items[0].Price, "model prices are not rescaled")
	assert.Equal(t, 15.0, items[1].Price)
	assert.Equal(t, "salmon", items[0].Provenance)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Restaurant: Sushi Den")
	assert.Contains(t, gen.prompts[0], "Cuisine: japanese")
	assert.Contains(t, gen.prompts[0], "Prices are numbers in USD")
	assert.Contains(t, gen.prompts[0], "Dishes mentioned in reviews: sushi")
}

func TestAISynthesisTier_FallbackToTemplate(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{enabled: true, err: errors.New("quota exceeded")}},
		{"malformed output", &fakeGenerator{enabled: true, response: "sorry, I can't"}},
		{"model declined", &fakeGenerator{enabled: true, response: `{"categories": []}`}},
		{"generator disabled", &fakeGenerator{enabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newTestAITier(t, tt.gen, true).Resolve(context.Background(), "p1", sushiBundle("p1"))
			require.NoError(t, err)
			require.NotNil(t, doc)
			assert.Equal(t, "Sushi & Sashimi", doc.Categories[0].Name)
			assert.Equal(t, 9.36, doc.Categories[0].Items[0].Price)
		})
	}

	doc, err := newTestAITier(t, nil, true).Resolve(context.Background(), "p1", sushiBundle("p1"))
	require.NoError(t, err)
	assert.True(t, doc.Valid())
}

func TestAISynthesisTier_NoFallback(t *testing.T) {
	boom := errors.New("quota exceeded")

	doc, err := newTestAITier(t, &fakeGenerator{enabled: true, err: boom}, false).Resolve(context.Background(), "p1", sushiBundle("p1"))
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, doc)

	doc, err = newTestAITier(t, &fakeGenerator{enabled: true, response: `{"categories": []}`}, false).Resolve(context.Background(), "p1", sushiBundle("p1"))
	assert.NoError(t, err)
	assert.Nil(t, doc)

	doc, err = newTestAITier(t, nil, false).Resolve(context.Background(), "p1", sushiBundle("p1"))
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestAISynthesisTier_Precondition(t *testing.T) {
	tier := newTestAITier(t, nil, true)
	bundle := sushiBundle("p1")
	bundle.Rating = model.Float64(2.0)

	assert.Equal(t, model.ReasonLowRating, tier.Precondition(bundle, false))
	assert.Empty(t, tier.Precondition(bundle, true))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "寿司...", truncateRunes("寿司が美味しい", 2))
}
