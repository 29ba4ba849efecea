package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients   = make(map[string]*client)
	clientsMu sync.Mutex
)

// RateLimitMiddleware enforces 5 req/s with a burst of 30 per client IP.
// Behind the load balancer the real address arrives in X-Forwarded-For.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		if !limiterFor(ip).Allow() {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func limiterFor(ip string) *rate.Limiter {
	clientsMu.Lock()
	defer clientsMu.Unlock()

	c, ok := clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(5, 30)}
		clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// CleanupVisitors evicts limiters idle longer than 3 minutes so the map does
// not grow unbounded. Run in its own goroutine.
func CleanupVisitors() {
	for {
		time.Sleep(time.Minute)
		clientsMu.Lock()
		for ip, c := range clients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(clients, ip)
			}
		}
		clientsMu.Unlock()
	}
}
