package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/handlers"
	"seamerkado_buyer/internal/middleware"
	"seamerkado_buyer/internal/session"
)

// Options regroupe ce dont les routes ont besoin en plus des handlers.
type Options struct {
	AllowedOrigins []string
	Sessions       *session.Manager
	Counter        cache.Counter
	APIMaxRequests int
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Ops
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(opts.Counter, opts.APIMaxRequests))

	// Session (publique)
	api.POST("/session", h.EstablishSession)
	api.GET("/session", h.CurrentSession)
	api.DELETE("/session", h.Logout)

	buyer := api.Group("")
	buyer.Use(middleware.RequireBuyer(opts.Sessions))

	// Tableau de bord et profil
	buyer.GET("/dashboard", middleware.SearchRateLimit(opts.Counter), h.Dashboard)
	buyer.GET("/profile", h.Profile)

	// Boutiques
	buyer.GET("/shops", h.ListShops)
	buyer.GET("/shops/:id/products", h.ShopProducts)

	// Panier
	cartRoutes := buyer.Group("/cart")
	cartRoutes.GET("", h.GetCart)
	cartRoutes.GET("/count", h.CartCount)
	cartRoutes.GET("/ws", h.CartSocket)
	cartRoutes.POST("/refresh", h.RefreshCart)

	mutations := cartRoutes.Group("")
	mutations.Use(middleware.CartRateLimit(opts.Counter))
	mutations.POST("/items", h.AddToCart)
	mutations.PUT("/items/:id", h.SetCartQuantity)
	mutations.POST("/items/:id/increment", h.IncrementCartItem)
	mutations.POST("/items/:id/decrement", h.DecrementCartItem)
	mutations.DELETE("/items/:id", h.RemoveCartItem)
	mutations.POST("/items/:id/toggle", h.ToggleCartItem)
	mutations.POST("/toggle-all", h.ToggleAllCartItems)

	// Checkout
	co := buyer.Group("/checkout")
	co.GET("", h.GetCheckout)
	co.GET("/qr", h.PaymentQR)
	co.POST("/open", h.OpenCheckout)
	co.POST("/close", h.CloseCheckout)
	co.PUT("/delivery", h.SetDelivery)
	co.POST("/addresses", h.SaveAddress)
	co.POST("/addresses/:id/use", h.UseSavedAddress)
	co.DELETE("/addresses/:id", h.DeleteAddress)
	co.POST("/proof", h.AttachProof)
	co.DELETE("/proof", h.RemoveProof)
	co.PUT("/confirm", h.ConfirmPayment)
	co.POST("/place", h.PlaceOrder)

	// Notifications
	notif := buyer.Group("/notifications")
	notif.GET("", h.GetNotifications)
	notif.GET("/ws", h.NotificationsSocket)
	notif.PUT("/read-all", h.MarkAllNotificationsRead)
	notif.PUT("/:id/read", h.MarkNotificationRead)
}
