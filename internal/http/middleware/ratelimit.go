package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/straye-as/billing-api/internal/auth"
	"github.com/straye-as/billing-api/internal/config"
	"github.com/straye-as/billing-api/internal/domain"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per client IP, per authenticated user and,
// more strictly, on the public auth endpoints.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	logger *zap.Logger

	anonymous     func(http.Handler) http.Handler
	authenticated func(http.Handler) http.Handler
	credentials   func(http.Handler) http.Handler

	exemptIPs      map[string]struct{}
	exemptPaths    map[string]struct{}
	exemptPrefixes []string
}

// NewRateLimiter builds the limiters from cfg. Whitelisted paths ending in
// "/*" exempt everything under that prefix.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:         cfg,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exemptPaths: make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[ip] = struct{}{}
	}
	for _, p := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(p, "/*"); ok {
			rl.exemptPrefixes = append(rl.exemptPrefixes, prefix)
			continue
		}
		rl.exemptPaths[p] = struct{}{}
	}

	onLimit := httprate.WithLimitHandler(rl.tooManyRequests)
	rl.anonymous = httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(rl.keyByIP), onLimit)
	rl.authenticated = httprate.Limit(cfg.RequestsPerMinuteAuth, time.Minute,
		httprate.WithKeyFuncs(rl.keyByUser), onLimit)

	login := cfg.LoginRequestsPerMinute
	if login <= 0 {
		login = cfg.RequestsPerMinute
	}
	rl.credentials = httprate.Limit(login, time.Minute,
		httprate.WithKeyFuncs(rl.keyByIP, httprate.KeyByEndpoint), onLimit)

	if cfg.Enabled {
		logger.Info("rate limiting enabled",
			zap.Int("per_minute", cfg.RequestsPerMinute),
			zap.Int("per_minute_auth", cfg.RequestsPerMinuteAuth),
			zap.Int("per_minute_login", login),
		)
	}
	return rl
}

// LimitByIP applies the anonymous per-IP limit. Mounted globally, before authentication.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	return rl.guard(next, func(*http.Request) func(http.Handler) http.Handler {
		return rl.anonymous
	})
}

// Limit applies the per-user limit to authenticated requests and falls back
// to the per-IP limit otherwise. Mounted after authentication.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return rl.guard(next, func(r *http.Request) func(http.Handler) http.Handler {
		if u, ok := auth.FromContext(r.Context()); ok && u != nil {
			return rl.authenticated
		}
		return rl.anonymous
	})
}

// LimitCredentials throttles register and login per IP and endpoint
func (rl *RateLimiter) LimitCredentials(next http.Handler) http.Handler {
	return rl.guard(next, func(*http.Request) func(http.Handler) http.Handler {
		return rl.credentials
	})
}

func (rl *RateLimiter) guard(next http.Handler, pick func(*http.Request) func(http.Handler) http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		pick(r)(next).ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.exemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range rl.exemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	_, ok := rl.exemptIPs[clientIP(r)]
	return ok
}

func (rl *RateLimiter) keyByIP(r *http.Request) (string, error) {
	return "ip:" + clientIP(r), nil
}

func (rl *RateLimiter) keyByUser(r *http.Request) (string, error) {
	if u, ok := auth.FromContext(r.Context()); ok && u != nil {
		return "user:" + u.UserID, nil
	}
	return rl.keyByIP(r)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", clientIP(r)),
	}
	if u, ok := auth.FromContext(r.Context()); ok && u != nil {
		fields = append(fields, zap.String("user_id", u.UserID))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:    domain.ErrorTypeRateLimited,
		Message: "Too many requests. Please try again later.",
		Status:  http.StatusTooManyRequests,
	})
}
