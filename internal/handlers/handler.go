// Package handlers expose les vues acheteur en JSON : tableau de bord,
// boutiques, panier, checkout, notifications et profil.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/addresses"
	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/catalog"
	"seamerkado_buyer/internal/checkout"
	"seamerkado_buyer/internal/clients"
	"seamerkado_buyer/internal/middleware"
	"seamerkado_buyer/internal/models"
	"seamerkado_buyer/internal/notifications"
	"seamerkado_buyer/internal/services"
	"seamerkado_buyer/internal/session"
)

// Deps regroupe tout ce dont les handlers ont besoin.
type Deps struct {
	Sessions      *session.Manager
	Store         cache.Store
	Cart          *cart.Store
	Selection     *cart.Selection
	Addresses     *addresses.Book
	Checkout      *checkout.Service
	Notifications *notifications.Service
	Poller        *notifications.Poller
	Seller        *clients.SellerClient
	Buyer         *clients.BuyerClient
	Search        *services.SearchIndex
	QR            services.PaymentQR
	Images        catalog.Images
}

type Handler struct {
	sessions      *session.Manager
	store         cache.Store
	cart          *cart.Store
	selection     *cart.Selection
	addresses     *addresses.Book
	checkout      *checkout.Service
	notifications *notifications.Service
	poller        *notifications.Poller
	seller        *clients.SellerClient
	buyer         *clients.BuyerClient
	search        *services.SearchIndex
	qr            services.PaymentQR
	images        catalog.Images
}

func New(d Deps) *Handler {
	return &Handler{
		sessions:      d.Sessions,
		store:         d.Store,
		cart:          d.Cart,
		selection:     d.Selection,
		addresses:     d.Addresses,
		checkout:      d.Checkout,
		notifications: d.Notifications,
		poller:        d.Poller,
		seller:        d.Seller,
		buyer:         d.Buyer,
		search:        d.Search,
		qr:            d.QR,
		images:        d.Images,
	}
}

func customerID(c *gin.Context) string {
	return c.GetString(middleware.CustomerIDKey)
}

// respondError traduit une erreur métier en réponse JSON.
func respondError(c *gin.Context, err error) {
	var submitErr *checkout.SubmitError
	var stockErr *cart.StockLimitError
	switch {
	case errors.As(err, &submitErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": submitErr.Message})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"error": stockErr.Error(), "warning": true})
	case errors.Is(err, checkout.ErrOrderInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": checkout.ErrOrderInProgress.Message})
	case errors.Is(err, checkout.ErrCheckoutClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout is not open."})
	case errors.Is(err, cart.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart."})
	case errors.Is(err, addresses.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found."})
	default:
		if msg, ok := models.UserMessage(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		log.WithError(err).WithField("path", c.FullPath()).Error("❌ Erreur interne")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
	}
}

// 🟢 GET /healthz
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		log.WithError(err).Warn("⚠️ Stockage injoignable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
