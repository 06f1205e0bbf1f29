package rest

import (
	"arcadechat/internal/cache"
	"arcadechat/internal/service"
	"arcadechat/internal/transport/rest/handler"
	"arcadechat/internal/transport/ws"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *service.GameService
	Results     cache.ResultCache
	WSHandler   *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(c.GameService, c.Results)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{gameId}", gameHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/games/{gameId}/join", gameHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/games/{gameId}/results", gameHandler.Results).Methods("GET", "OPTIONS")

	// WebSocket route (optional token in query param)
	v1.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
