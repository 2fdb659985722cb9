package service

import (
	"menuengine/internal/config"
	"menuengine/internal/model"
)

// TemplateLibrary serves base menus per cuisine from the catalogue. Callers
// always receive a copy and may mutate it freely.
type TemplateLibrary struct {
	version   string
	templates map[model.Cuisine]*model.MenuDocument
}

// NewTemplateLibrary converts catalogue templates into menu documents
func NewTemplateLibrary(cat *config.Catalog) *TemplateLibrary {
	lib := &TemplateLibrary{
		version:   cat.Version,
		templates: make(map[model.Cuisine]*model.MenuDocument, len(model.AllCuisines)),
	}
	for _, cuisine := range model.AllCuisines {
		tmpl, ok := cat.Template(cuisine)
		if !ok {
			continue
		}
		lib.templates[cuisine] = templateDocument(cuisine, tmpl)
	}
	return lib
}

func templateDocument(cuisine model.Cuisine, tmpl config.TemplateConfig) *model.MenuDocument {
	doc := &model.MenuDocument{
		RestaurantType: cuisine,
		Categories:     make([]model.MenuCategory, 0, len(tmpl.Categories)),
	}
	for _, c := range tmpl.Categories {
		items := make([]model.MenuItem, 0, len(c.Items))
		for _, it := range c.Items {
			items = append(items, model.MenuItem{
				Name:        it.Name,
				Description: it.Description,
				Price:       it.Price,
			})
		}
		doc.Categories = append(doc.Categories, model.MenuCategory{Name: c.Name, Items: items})
	}
	return doc
}

// TemplateFor returns the base menu for a cuisine, falling back to american
// for anything unknown
func (l *TemplateLibrary) TemplateFor(cuisine model.Cuisine) *model.MenuDocument {
	if doc, ok := l.templates[cuisine]; ok {
		return doc.Clone()
	}
	return l.templates[model.CuisineAmerican].Clone()
}

// Version is the catalogue version the templates came from
func (l *TemplateLibrary) Version() string {
	return l.version
}

// Cuisines lists cuisines with a template, in priority order
func (l *TemplateLibrary) Cuisines() []model.Cuisine {
	out := make([]model.Cuisine, 0, len(l.templates))
	for _, c := range model.AllCuisines {
		if _, ok := l.templates[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
