package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bondquant/ftdfeed/internal/api/handlers"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// APIRateLimit bounds inbound requests per client-visible window.
var APIRateLimit = redis.RateLimitConfig{
	Key:    "api",
	Limit:  50,
	Window: time.Second,
}

// NewRouter creates and configures the HTTP router.
func NewRouter(
	recordHandler *handlers.RecordHandler,
	periodHandler *handlers.PeriodHandler,
	qualityHandler *handlers.QualityHandler,
	jobHandler *handlers.JobHandler,
	limiter *redis.RateLimiter,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Record endpoints
	api.HandleFunc("/records/{symbol}", recordHandler.GetBySymbol).Methods("GET")

	// Period and metadata endpoints
	api.HandleFunc("/periods", periodHandler.List).Methods("GET")
	api.HandleFunc("/metadata", periodHandler.Metadata).Methods("GET")

	// Quality endpoints
	api.HandleFunc("/quality", qualityHandler.LatestSnapshots).Methods("GET")

	// Job endpoints
	api.HandleFunc("/jobs", jobHandler.List).Methods("GET")
	api.HandleFunc("/jobs/{name}/stats", jobHandler.Stats).Methods("GET")
	api.HandleFunc("/jobs/{name}/run", jobHandler.Run).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	api.Use(rateLimitMiddleware(limiter, log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "ftdfeed-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware enforces the sliding-window limit; a redis failure
// lets the request through rather than taking the API down with it.
func rateLimitMiddleware(limiter *redis.RateLimiter, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _, err := limiter.Allow(r.Context(), APIRateLimit)
			if err != nil {
				log.WithError(err).Warn("Rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
