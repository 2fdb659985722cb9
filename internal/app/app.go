package app

import (
	"fmt"
	"menuengine/internal/cache"
	"menuengine/internal/config"
	"menuengine/internal/service"
)

// App is the assembled menu engine shared by the server and menuctl
type App struct {
	Catalog     *config.Catalog
	Classifier  *service.Classifier
	Templates   *service.TemplateLibrary
	Keywords    *service.KeywordExtractor
	MenuService *service.MenuService
}

// New wires the tier chain over menuCache. providers back the authoritative
// tier alongside the places client when PLACES_BASE_URL is set.
func New(cfg *config.Config, aiCfg *config.AIConfig, menuCache cache.MenuCache, providers ...service.ProviderMenuSource) (*App, error) {
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	classifier := service.NewClassifier()
	templates := service.NewTemplateLibrary(catalog)
	keywords := service.NewKeywordExtractor(catalog.Vocabulary)
	adjuster := service.NewSynthesisAdjuster(keywords, cfg.Currency)
	noMenu := service.NewNoMenuBuilder(cfg.MinSynthesisRating)

	if cfg.PlacesBaseURL != "" {
		providers = append(providers, service.NewPlacesClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey, cfg.TierTimeout))
	}

	var generator service.MenuGenerator
	if aiCfg.IsEnabled() {
		generator = service.NewGeminiClient(aiCfg)
	}

	tiers := []service.MenuTier{
		service.NewAuthoritativeTier(cfg.Currency, providers...),
		service.NewWebsiteTier(cfg.Currency, cfg.TierTimeout),
		service.NewAISynthesisTier(generator, classifier, templates, adjuster, keywords, noMenu, aiCfg.TemplateFallback),
	}

	menuSvc := service.NewMenuService(menuCache, tiers, classifier, noMenu, service.MenuServiceOptions{
		CacheTTL:    cfg.CacheTTL,
		TierTimeout: cfg.TierTimeout,
		Currency:    cfg.Currency,
		Coalesce:    cfg.CoalesceResolutions,
	})

	return &App{
		Catalog:     catalog,
		Classifier:  classifier,
		Templates:   templates,
		Keywords:    keywords,
		MenuService: menuSvc,
	}, nil
}
