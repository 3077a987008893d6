package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cache"
)

const (
	CartMaxRequests   = 20 // mutations panier par minute et par acheteur
	SearchMaxRequests = 30 // recherches par minute et par IP

	APICooldown = 1 * time.Minute
)

// limit compte la requête sous key ; au-delà de max on répond 429.
// Si le compteur est indisponible la requête passe.
func limit(c *gin.Context, counter cache.Counter, key string, max int, message string) bool {
	n, err := counter.Incr(c.Request.Context(), key, APICooldown)
	if err != nil {
		log.WithError(err).WithField("key", key).Warn("⚠️ Rate limit indisponible")
		return true
	}
	remaining := int64(max) - n
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

	if n > int64(max) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       message,
			"retry_after": int(APICooldown.Seconds()),
		})
		return false
	}
	return true
}

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit(counter cache.Counter, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit(c, counter, "api_requests:"+c.ClientIP(), max, "Too many requests. Try again in 1 minute.") {
			c.Next()
		}
	}
}

// CartRateLimit limite les mutations du panier (anti-spam)
func CartRateLimit(counter cache.Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := c.GetString(CustomerIDKey)
		if customerID == "" {
			c.Next()
			return
		}
		if limit(c, counter, "cart_mutations:"+customerID, CartMaxRequests, "Too many cart updates. Please slow down.") {
			c.Next()
		}
	}
}

// SearchRateLimit limite les recherches du tableau de bord
func SearchRateLimit(counter cache.Counter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("q") == "" {
			c.Next()
			return
		}
		if limit(c, counter, "search_requests:"+c.ClientIP(), SearchMaxRequests, "Too many searches. Try again in 1 minute.") {
			c.Next()
		}
	}
}
