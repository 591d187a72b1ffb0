package middleware

import (
	"net/http"
	"sync"
	"time"

	"pedidos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// limitadorIP hands out one token bucket per client IP.
type limitadorIP struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

type bucket struct {
	lim   *rate.Limiter
	visto time.Time
}

var (
	limitadoresMu sync.Mutex
	limitadores   []*limitadorIP
)

// newLimitadorIP builds a limiter and registers it with the purge goroutine.
func newLimitadorIP(rps rate.Limit, burst int) *limitadorIP {
	l := &limitadorIP{buckets: make(map[string]*bucket), rps: rps, burst: burst}
	limitadoresMu.Lock()
	limitadores = append(limitadores, l)
	limitadoresMu.Unlock()
	return l
}

func (l *limitadorIP) permitir(ip string) bool {
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.visto = time.Now()
	l.mu.Unlock()
	return b.lim.Allow()
}

// purgar drops buckets idle for longer than inactividad and returns how many.
func (l *limitadorIP) purgar(inactividad time.Duration) int {
	limite := time.Now().Add(-inactividad)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, b := range l.buckets {
		if b.visto.Before(limite) {
			delete(l.buckets, ip)
			n++
		}
	}
	return n
}

func (l *limitadorIP) middleware(mensaje string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.permitir(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		if EsAPI(c) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(mensaje))
			return
		}
		c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
			"Titulo":  "Demasiadas solicitudes",
			"Status":  http.StatusTooManyRequests,
			"Mensaje": mensaje,
		})
		c.Abort()
	}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

var loginLimiter = newLimitadorIP(rate.Every(3*time.Second), 20)

// LoginRateLimiter allows bursts of 20 login attempts per IP, refilling one
// every 3 seconds.
func LoginRateLimiter() gin.HandlerFunc {
	return loginLimiter.middleware("Demasiados intentos de inicio de sesión. Intente en 1 minuto.")
}

// ── General rate limiter ─────────────────────────────────────────────────────

// RateLimiter limits every client IP to rps requests per second with a burst
// of twice that. Non-positive rps disables it.
func RateLimiter(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return newLimitadorIP(rate.Limit(rps), 2*rps).
		middleware("Demasiadas solicitudes. Intente nuevamente en un momento.")
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes idle buckets so IPs that never return do not pile up.

const (
	purgeInterval = 5 * time.Minute
	inactividadIP = 10 * time.Minute
)

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		limitadoresMu.Lock()
		activos := append([]*limitadorIP(nil), limitadores...)
		limitadoresMu.Unlock()

		purged := 0
		for _, l := range activos {
			purged += l.purgar(inactividadIP)
		}
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}
