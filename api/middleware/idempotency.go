package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Max3uc3Planz/lcdt-back/api/responses"
	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	pkgredis "github.com/Max3uc3Planz/lcdt-back/pkg/redis"
)

const (
	standardReplayTTL = 24 * time.Hour
	checkoutReplayTTL = 7 * 24 * time.Hour
)

// replayRule marks a route pattern whose POSTs must be replay-safe. The
// checkout keeps its record a full week because a duplicate there means a
// double charge and a double stock decrement.
type replayRule struct {
	method string
	match  func(pattern string) bool
	ttl    time.Duration
}

var replayRules = []replayRule{
	{http.MethodPost, exactRoute("/api/v1/auth/register"), standardReplayTTL},
	{http.MethodPost, nestedRoute("/api/v1/users/", "/addresses"), standardReplayTTL},
	{http.MethodPost, nestedRoute("/api/v1/users/", "/telephones"), standardReplayTTL},
	{http.MethodPost, exactRoute("/api/v1/orders"), checkoutReplayTTL},
}

func exactRoute(path string) func(string) bool {
	return func(pattern string) bool { return pattern == path }
}

func nestedRoute(prefix, suffix string) func(string) bool {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

// storedReply is what gets persisted in Redis under the idempotency key.
// The request hash lets a reused key with a different body be rejected
// instead of replayed.
type storedReply struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key
// on the covered routes, and requires the header on those routes.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, covered := replayTTL(r)
			if !covered || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if clientKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			requestHash := base64.StdEncoding.EncodeToString(sum[:])
			key := store.IdempotencyKey(replayScope(r), clientKey)

			stored, getErr := store.Get(r.Context(), key)
			switch {
			case getErr != nil && !errors.Is(getErr, redis.Nil):
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "check idempotency"))
				return
			case stored != "":
				var reply storedReply
				if decodeErr := json.Unmarshal([]byte(stored), &reply); decodeErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode idempotency record"))
					return
				}
				if reply.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				replayReply(w, reply)
				return
			}

			buf := &bufferedWriter{ResponseWriter: w}
			next.ServeHTTP(buf, r)

			reply := storedReply{
				Status:      buf.statusOrOK(),
				Body:        base64.StdEncoding.EncodeToString(buf.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := buf.Header().Get("Content-Type"); ct != "" {
				reply.Headers = map[string]string{"Content-Type": ct}
			}

			payload, marshalErr := json.Marshal(reply)
			if marshalErr != nil {
				logMiddlewareError(r.Context(), logg, "marshal idempotency record", marshalErr)
				return
			}
			if _, setErr := store.SetNX(r.Context(), key, string(payload), ttl); setErr != nil {
				logMiddlewareError(r.Context(), logg, "persist idempotency record", setErr)
			}
		})
	}
}

// replayScope ties the record to the actor and route so the same client key
// cannot replay a response across users or endpoints.
func replayScope(r *http.Request) string {
	userID := ""
	if actor, ok := ActorFromContext(r.Context()); ok {
		userID = actor.UserID.String()
	}
	return strings.Join([]string{userID, r.Method, r.URL.Path}, "|")
}

func replayTTL(r *http.Request) (time.Duration, bool) {
	pattern := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			pattern = p
		}
	}
	if pattern == "" {
		return 0, false
	}
	// chi reports subrouter roots with a trailing slash.
	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	for _, rule := range replayRules {
		if rule.method == r.Method && rule.match(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func replayReply(w http.ResponseWriter, reply storedReply) {
	if ct := reply.Headers["Content-Type"]; ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(reply.Status)
	if decoded, err := base64.StdEncoding.DecodeString(reply.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

type bufferedWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (b *bufferedWriter) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	b.body.Write(p)
	return b.ResponseWriter.Write(p)
}

func (b *bufferedWriter) statusOrOK() int {
	if b.status == 0 {
		return http.StatusOK
	}
	return b.status
}

func logMiddlewareError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
