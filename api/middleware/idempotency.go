package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/littlemija/littlemija-backend/api/responses"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	pkgredis "github.com/littlemija/littlemija-backend/pkg/redis"
)

const (
	idempotencyHeader      = "Idempotency-Key"
	idempotentReplayHeader = "Idempotent-Replayed"
	defaultIdempotencyTTL  = 24 * time.Hour
	// A reservation outlives any sane handler; a crashed pod frees the key after this.
	pendingReservationTTL = 2 * time.Minute
	maxIdempotencyKeyLen  = 255
)

type recordState string

const (
	statePending   recordState = "pending"
	stateCompleted recordState = "completed"
)

// idempotentRoute matches chi route patterns by prefix and suffix so {orderId} segments still match.
type idempotentRoute struct {
	method string
	prefix string
	suffix string
	exact  bool
}

func (r idempotentRoute) matches(method, pattern string) bool {
	if r.method != method {
		return false
	}
	if r.exact {
		return pattern == r.prefix
	}
	return strings.HasPrefix(pattern, r.prefix) && strings.HasSuffix(pattern, r.suffix)
}

// Placing an order and asserting a payment must not be applied twice on client retry.
var idempotentRoutes = []idempotentRoute{
	{method: http.MethodPost, prefix: "/api/v1/checkout", exact: true},
	{method: http.MethodPost, prefix: "/api/v1/orders/", suffix: "/payment"},
}

// replayedHeaders survive into the stored record.
var replayedHeaders = []string{"Content-Type", "Location"}

type idempotencyRecord struct {
	State       recordState       `json:"state"`
	RequestHash string            `json:"request_hash"`
	Status      int               `json:"status,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        []byte            `json:"body,omitempty"`
}

// Idempotency makes checkout and payment safe to retry. The first request for a key reserves it,
// runs, and stores its response; later requests with the same body get that response back. A
// duplicate that arrives while the first is still running is rejected with 409, and 5xx outcomes
// release the key so the client can try again. A zero ttl uses the 24h default.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	pendingTTL := min(pendingReservationTTL, ttl)

	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isIdempotentRoute(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if len(clientKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := fingerprint(body)
			key := store.IdempotencyKey(requestScope(r), clientKey)

			claimed, err := reserve(ctx, store, key, requestHash, pendingTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !claimed {
				replayExisting(ctx, logg, store, w, key, requestHash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			finish(ctx, logg, store, key, requestHash, capture, ttl)
		})
	}
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(idempotencyRecord{State: statePending, RequestHash: requestHash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(payload), ttl)
}

func replayExisting(ctx context.Context, logg *logger.Logger, store pkgredis.IdempotencyStore, w http.ResponseWriter, key, requestHash string) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// The reservation expired between SetNX and Get; the first attempt is effectively abandoned.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.State != stateCompleted:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "request with this Idempotency-Key is still in progress"))
	default:
		for name, value := range record.Headers {
			w.Header().Set(name, value)
		}
		w.Header().Set(idempotentReplayHeader, "true")
		w.WriteHeader(record.Status)
		_, _ = w.Write(record.Body)
	}
}

func finish(ctx context.Context, logg *logger.Logger, store pkgredis.IdempotencyStore, key, requestHash string, capture *responseCapture, ttl time.Duration) {
	status := capture.statusCode()
	if status >= http.StatusInternalServerError {
		if err := store.Del(ctx, key); err != nil && logg != nil {
			logg.Error(ctx, "idempotency.release_failed", err)
		}
		return
	}

	record := idempotencyRecord{
		State:       stateCompleted,
		RequestHash: requestHash,
		Status:      status,
		Body:        capture.body.Bytes(),
	}
	for _, name := range replayedHeaders {
		if value := capture.Header().Get(name); value != "" {
			if record.Headers == nil {
				record.Headers = make(map[string]string, len(replayedHeaders))
			}
			record.Headers[name] = value
		}
	}

	payload, err := json.Marshal(record)
	if err == nil {
		err = store.Set(ctx, key, string(payload), ttl)
	}
	if err != nil && logg != nil {
		logg.Error(ctx, "idempotency.store_failed", err)
	}
}

// requestScope keeps keys from colliding across customers and endpoints.
func requestScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		// Mid-chain the pattern is still a wildcard prefix such as /api/v1/*.
		if pattern := rc.RoutePattern(); pattern != "" && !strings.Contains(pattern, "*") {
			return pattern
		}
	}
	return r.URL.Path
}

func isIdempotentRoute(method, pattern string) bool {
	for _, route := range idempotentRoutes {
		if route.matches(method, pattern) {
			return true
		}
	}
	return false
}

// responseCapture tees the response so it can be stored after the handler returns.
type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
