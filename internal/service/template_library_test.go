package service

import (
	"menuengine/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateLibrary_EveryCuisine(t *testing.T) {
	lib := NewTemplateLibrary(testCatalog(t))

	assert.Equal(t, model.AllCuisines, lib.Cuisines())
	assert.Equal(t, "2026.10.1", lib.Version())

	for _, c := range model.AllCuisines {
		doc := lib.TemplateFor(c)
		require.True(t, doc.Valid(), c)
		assert.Equal(t, c, doc.RestaurantType)
		assert.GreaterOrEqual(t, len(doc.Categories), 2, c)
		assert.LessOrEqual(t, len(doc.Categories), 3, c)
		for _, cat := range doc.Categories {
			assert.GreaterOrEqual(t, len(cat.Items), 2, "%s/%s", c, cat.Name)
			for _, it := range cat.Items {
				assert.Positive(t, it.Price)
				assert.False(t, it.AIRecommended)
			}
		}
	}
}

func TestTemplateLibrary_UnknownFallsBackToAmerican(t *testing.T) {
	lib := NewTemplateLibrary(testCatalog(t))

	doc := lib.TemplateFor("martian")
	assert.Equal(t, model.CuisineAmerican, doc.RestaurantType)
	assert.Equal(t, lib.TemplateFor(model.CuisineAmerican), doc)
}

func TestTemplateLibrary_ReturnsCopies(t *testing.T) {
	lib := NewTemplateLibrary(testCatalog(t))

	first := lib.TemplateFor(model.CuisineJapanese)
	first.Categories[0].Items[0].Price = 999
	first.Categories[0].Name = "changed"

	second := lib.TemplateFor(model.CuisineJapanese)
	assert.Equal(t, "Sushi & Sashimi", second.Categories[0].Name)
	assert.Equal(t, 6.5, second.Categories[0].Items[0].Price)
}
