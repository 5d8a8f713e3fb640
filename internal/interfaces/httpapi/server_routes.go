package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /api/health", handler.Health)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerRecommendationRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/best-game", handler.BestGame)
	mux.HandleFunc("GET /api/games", handler.ListGames)
	mux.HandleFunc("GET /api/config", handler.GetConfig)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalRefreshToken string) {
	mux.Handle("POST /internal/refresh", RequireInternalToken(internalRefreshToken, http.HandlerFunc(handler.Refresh)))
}
