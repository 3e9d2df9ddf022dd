package http

import (
	"net/http"

	"go.uber.org/zap"
)

// NewRouter wires the service routes. Only /simulacao is rate limited.
func NewRouter(handler *SimulationHandler, limiter *RateLimiter, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(
		"/simulacao",
		RateLimitMiddleware(
			limiter,
			logger,
			http.HandlerFunc(handler.Simulate),
		),
	)
	mux.HandleFunc("/health", handler.Health)
	return mux
}
