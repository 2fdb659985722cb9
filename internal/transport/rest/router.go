package rest

import (
	"menuengine/internal/service"
	"menuengine/internal/transport/rest/handler"
	"menuengine/internal/transport/rest/middleware"
	"menuengine/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	MenuService handler.MenuResolver
	Classifier  *service.Classifier
	Templates   *service.TemplateLibrary

	// Optional, only present when Mongo is configured
	ProviderMenus handler.ProviderMenuStore
	Resolutions   handler.ResolutionLister

	WSHub          *ws.Hub
	MetricsHandler http.Handler
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	menuHandler := handler.NewMenuHandler(c.MenuService)
	catalogHandler := handler.NewCatalogHandler(c.Classifier, c.Templates)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestID)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/places/{placeId}/menu", menuHandler.Resolve).Methods("POST", "OPTIONS")
	v1.HandleFunc("/places/{placeId}/menu/ai", menuHandler.ResolveAI).Methods("POST", "OPTIONS")
	v1.HandleFunc("/classify", catalogHandler.Classify).Methods("POST", "OPTIONS")
	v1.HandleFunc("/templates", catalogHandler.List).Methods("GET", "OPTIONS")
	v1.HandleFunc("/templates/{cuisine}", catalogHandler.Template).Methods("GET", "OPTIONS")

	if c.ProviderMenus != nil && c.Resolutions != nil {
		placeHandler := handler.NewPlaceDataHandler(c.ProviderMenus, c.Resolutions)
		v1.HandleFunc("/places/{placeId}/provider-menu", placeHandler.PutProviderMenu).Methods("PUT", "OPTIONS")
		v1.HandleFunc("/places/{placeId}/provider-menu", placeHandler.DeleteProviderMenu).Methods("DELETE", "OPTIONS")
		v1.HandleFunc("/places/{placeId}/resolutions", placeHandler.Resolutions).Methods("GET", "OPTIONS")
	}

	// WebSocket routes
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub)
		v1.HandleFunc("/ws/places/{placeId}", wsHandler.PlaceWS).Methods("GET")
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.MetricsHandler != nil {
		r.Handle("/metrics", c.MetricsHandler).Methods("GET")
	}

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Cache")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
