package httpserver

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Routes aggregates handlers for HTTP server.
type Routes struct {
	Index   http.Handler
	WS      http.HandlerFunc
	Display http.HandlerFunc
	Health  http.HandlerFunc
	Metrics http.Handler
}

// NewRouter wires all HTTP routes. allowedOrigins empty means any origin.
func NewRouter(routes Routes, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	if routes.WS != nil {
		router.HandleFunc("/ws", routes.WS).Methods(http.MethodGet)
	}
	if routes.Display != nil {
		router.HandleFunc("/api/display", routes.Display).Methods(http.MethodGet)
	}
	if routes.Health != nil {
		router.HandleFunc("/health", routes.Health).Methods(http.MethodGet)
	}
	if routes.Metrics != nil {
		router.Handle("/metrics", routes.Metrics).Methods(http.MethodGet)
	}
	if routes.Index != nil {
		router.Handle("/", routes.Index).Methods(http.MethodGet)
	}

	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
