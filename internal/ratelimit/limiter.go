package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour

	// Entries idle longer than this are dropped during pruning.
	staleAfter = time.Hour

	pruneThreshold = 1024
)

// Limiter caps requests per client address with two fixed windows, one per
// minute and one per hour. A window resets once it has fully elapsed.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow

	perMinute int
	perHour   int

	now func() time.Time
}

type clientWindow struct {
	minuteStart time.Time
	minuteCount int

	hourStart time.Time
	hourCount int

	lastSeen time.Time
}

func New(perMinute, perHour int) *Limiter {
	return &Limiter{
		clients:   make(map[string]*clientWindow),
		perMinute: perMinute,
		perHour:   perHour,
		now:       time.Now,
	}
}

// Allow records one request for the client and reports whether it fits in
// both windows. A rejected request is not recorded.
func (that *Limiter) Allow(client string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	now := that.now()

	if len(that.clients) > pruneThreshold {
		that.prune(now)
	}

	window, ok := that.clients[client]
	if !ok {
		window = &clientWindow{minuteStart: now, hourStart: now}
		that.clients[client] = window
	}

	if now.Sub(window.minuteStart) >= minuteWindow {
		window.minuteStart = now
		window.minuteCount = 0
	}

	if now.Sub(window.hourStart) >= hourWindow {
		window.hourStart = now
		window.hourCount = 0
	}

	if window.minuteCount >= that.perMinute || window.hourCount >= that.perHour {
		return false
	}

	window.minuteCount++
	window.hourCount++
	window.lastSeen = now

	return true
}

func (that *Limiter) prune(now time.Time) {
	for client, window := range that.clients {
		if now.Sub(window.lastSeen) > staleAfter {
			delete(that.clients, client)
		}
	}
}

// Middleware enforces the limiter per remote address. Health and metrics
// endpoints are exempt.
func (that *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		if !that.Allow(clientAddr(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
