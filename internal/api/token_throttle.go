package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultTokenFailureLimit  = 10
	defaultTokenFailureWindow = 15 * time.Minute
)

type failureWindow struct {
	started time.Time
	count   int
}

// failureThrottle blocks a client once it has sent limit bad tokens within
// one window. The window opens at the first failure and is not extended.
type failureThrottle struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]failureWindow
}

func newFailureThrottle(limit int, window time.Duration) *failureThrottle {
	if limit <= 0 {
		limit = defaultTokenFailureLimit
	}
	if window <= 0 {
		window = defaultTokenFailureWindow
	}
	return &failureThrottle{limit: limit, window: window, clients: make(map[string]failureWindow)}
}

func (throttle *failureThrottle) blocked(client string, now time.Time) bool {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	current, ok := throttle.currentLocked(client, now)
	return ok && current.count >= throttle.limit
}

func (throttle *failureThrottle) fail(client string, now time.Time) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()

	current, ok := throttle.currentLocked(client, now)
	if !ok {
		current = failureWindow{started: now}
	}
	current.count++
	throttle.clients[client] = current
}

func (throttle *failureThrottle) reset(client string) {
	throttle.mu.Lock()
	defer throttle.mu.Unlock()
	delete(throttle.clients, client)
}

// currentLocked drops an expired window so the map does not grow with
// clients that stopped retrying.
func (throttle *failureThrottle) currentLocked(client string, now time.Time) (failureWindow, bool) {
	current, ok := throttle.clients[client]
	if !ok {
		return failureWindow{}, false
	}
	if now.Sub(current.started) >= throttle.window {
		delete(throttle.clients, client)
		return failureWindow{}, false
	}
	return current, true
}

func throttleKey(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.IP()); ip != "" {
		return ip
	}
	return "unknown"
}
