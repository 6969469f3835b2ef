package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/pkg/config"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	pkgredis "github.com/littlemija/littlemija-backend/pkg/redis"
)

// Auth bodies are tiny; anything bigger is not a login attempt.
const maxAuthBodyBytes = 64 << 10

// AuthRateLimitPolicy throttles one auth endpoint by client IP and by the email in the body.
// A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// LoginPolicy and SignupPolicy read their limits from config.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    cfg.LoginIPLimit,
		EmailLimit: cfg.LoginEmailLimit,
	}
}

func SignupPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Name:       "signup",
		Window:     cfg.SignupWindow,
		IPLimit:    cfg.SignupIPLimit,
		EmailLimit: cfg.SignupEmailLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

// limitCheck is one counter consulted for a request.
type limitCheck struct {
	dimension string
	value     string
	limit     int
}

func (c limitCheck) scope(policy string) string {
	return c.dimension + ":" + policy + ":" + c.value
}

// AuthRateLimit answers 429 with Retry-After once any counter for the request passes its limit.
// Emails are hashed before they reach Redis or the logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	name := strings.ToLower(strings.TrimSpace(policy.Name))
	if name == "" {
		name = "auth"
	}
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]limitCheck, 0, 2)
			if ip := clientIP(r); policy.IPLimit > 0 && ip != "" {
				checks = append(checks, limitCheck{dimension: "ip", value: ip, limit: policy.IPLimit})
			}
			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBodyBytes))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := normalizeEmail(extractEmail(body)); email != "" {
					checks = append(checks, limitCheck{dimension: "email", value: hashValue(email), limit: policy.EmailLimit})
				}
			}

			for _, check := range checks {
				allowed, count, err := store.FixedWindowAllow(ctx, check.scope(name), int64(check.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					rejectRateLimited(ctx, logg, w, name, policy.Window, check, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy string, window time.Duration, check limitCheck, count int64) {
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy,
			"dimension":      check.dimension,
			"key":            check.value,
			"attempts":       count,
			"limit":          check.limit,
			"window_seconds": int(window.Seconds()),
		}), "auth.rate_limit.blocked")
	}
	// Fixed windows reset at most one window from now.
	w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first parseable X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:16])
}
