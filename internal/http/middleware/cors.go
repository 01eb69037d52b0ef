package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/straye-as/billing-api/internal/config"
	"go.uber.org/zap"
)

func isDevelopment(environment string) bool {
	return environment == "development" || environment == "local" || environment == "" || environment == "test"
}

// CORS returns a CORS middleware configured from the application config.
// A "*" origin or an empty list in development allows any origin; an empty
// list elsewhere denies all cross-origin requests.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	options.AllowOriginFunc = originPolicy(cfg.AllowedOrigins, environment, logger)
	if options.AllowOriginFunc == nil {
		options.AllowedOrigins = cfg.AllowedOrigins
	}

	return cors.Handler(options)
}

// originPolicy returns nil when the explicit origin list should be used
func originPolicy(origins []string, environment string, logger *zap.Logger) func(*http.Request, string) bool {
	allowAny := func(_ *http.Request, origin string) bool { return origin != "" }

	for _, origin := range origins {
		if origin == "*" {
			if !isDevelopment(environment) {
				logger.Warn("CORS configured with wildcard origin in non-development environment",
					zap.String("environment", environment))
			}
			return allowAny
		}
	}

	if len(origins) > 0 {
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", origins))
		return nil
	}

	if isDevelopment(environment) {
		logger.Info("CORS configured to allow all origins in development mode")
		return allowAny
	}

	// An empty AllowedOrigins means "*" to go-chi/cors, so deny explicitly
	logger.Warn("CORS configured with no allowed origins - all cross-origin requests will be denied",
		zap.String("environment", environment))
	return func(*http.Request, string) bool { return false }
}
