package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/session"
)

// 🟢 POST /api/session
// Avec un secret configuré seul un jeton signé est accepté ; sinon les champs bruts.
func (h *Handler) EstablishSession(c *gin.Context) {
	var input struct {
		Token      string `json:"token"`
		CustomerID string `json:"customer_id"`
		Name       string `json:"buyerName"`
		Email      string `json:"buyerEmail"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}

	buyer := session.Buyer{CustomerID: input.CustomerID, Name: input.Name, Email: input.Email}
	if h.sessions.HandoffEnabled() {
		b, err := h.sessions.ParseHandoff(input.Token)
		if err != nil {
			log.WithError(err).Warn("❌ Jeton de connexion refusé")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login token."})
			return
		}
		buyer = b
	}

	if err := h.sessions.Establish(c.Writer, c.Request, buyer); err != nil {
		respondError(c, err)
		return
	}
	log.WithField("customer_id", buyer.CustomerID).Info("✅ Session acheteur ouverte")
	c.JSON(http.StatusOK, buyer)
}

// 🟢 GET /api/session
func (h *Handler) CurrentSession(c *gin.Context) {
	buyer, err := h.sessions.Load(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": session.ErrNoSession.Message})
		return
	}
	c.JSON(http.StatusOK, buyer)
}

// 🔴 DELETE /api/session
func (h *Handler) Logout(c *gin.Context) {
	if buyer, err := h.sessions.Load(c.Request); err == nil {
		log.WithField("customer_id", buyer.CustomerID).Info("🚪 Déconnexion acheteur")
		h.notifications.Forget(buyer.CustomerID)
	}
	if err := h.sessions.Clear(c.Writer, c.Request); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
