package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/session"
)

// Clés posées dans le contexte gin.
const (
	CustomerIDKey = "customer_id"
	BuyerNameKey  = "buyer_name"
	BuyerEmailKey = "buyer_email"
)

// RequireBuyer exige une session acheteur et expose son identité aux handlers.
func RequireBuyer(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer, err := sessions.Load(c.Request)
		if err != nil {
			log.WithField("path", c.FullPath()).Debug("🔐 Requête sans session acheteur")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": session.ErrNoSession.Message})
			return
		}
		c.Set(CustomerIDKey, buyer.CustomerID)
		c.Set(BuyerNameKey, buyer.Name)
		c.Set(BuyerEmailKey, buyer.Email)
		c.Next()
	}
}
