package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/webutil"
)

// SetHeader is a middleware to set a response header.
func SetHeader(key, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(key, value)
			next.ServeHTTP(w, r)
		})
	}
}

// TokenParser turns a bearer token into the actor it was issued to.
type TokenParser interface {
	Parse(token string) (*auth.Actor, error)
}

// Authenticate attaches the bearer token's actor to the request context.
// Requests without a token pass through anonymously; a present but invalid
// token is rejected.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
			token, ok := webutil.BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return nil
			}
			actor, err := tokens.Parse(token)
			if err != nil {
				return webutil.NewHTTPErrorWrap(http.StatusUnauthorized, "Invalid or expired token", err)
			}
			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
			return nil
		})
	}
}

// RequireLogin rejects anonymous requests.
func RequireLogin(next http.Handler) http.Handler {
	return webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
		if auth.ActorFromContext(r.Context()) == nil {
			return models.ErrUnauthenticated
		}
		next.ServeHTTP(w, r)
		return nil
	})
}

// RequireCapability rejects requests whose actor lacks capability.
func RequireCapability(policy auth.Policy, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
			if err := auth.Require(policy, auth.ActorFromContext(r.Context()), capability); err != nil {
				return err
			}
			next.ServeHTTP(w, r)
			return nil
		})
	}
}

// RequireSharedSecret guards internal endpoints with a static header token.
// An empty secret disables the endpoint.
func RequireSharedSecret(header, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return webutil.MakeHandler(func(w http.ResponseWriter, r *http.Request) error {
			got := r.Header.Get(header)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return webutil.ErrUnauthorized("")
			}
			next.ServeHTTP(w, r)
			return nil
		})
	}
}

// CORS allows browser clients from origins to call the API with bearer tokens.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{webutil.HeaderContentType, webutil.HeaderAuthorization},
	}).Handler
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateClient
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateClient),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow consumes one token from ip's bucket.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, found := l.clients[ip]
	if !found {
		c = &rateClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = l.now()
	return c.limiter.Allow()
}

// Evict forgets clients idle for longer than maxIdle.
func (l *RateLimiter) Evict(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// RunJanitor evicts idle clients every minute until ctx is done.
func (l *RateLimiter) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Evict(3 * time.Minute)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr // RealIP strips the port
		}
		if !l.Allow(ip) {
			slog.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
			webutil.RespondWithError(w, http.StatusTooManyRequests, webutil.ErrTooManyRequests().Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
