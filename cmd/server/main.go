package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/addresses"
	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/catalog"
	"seamerkado_buyer/internal/checkout"
	"seamerkado_buyer/internal/clients"
	"seamerkado_buyer/internal/config"
	"seamerkado_buyer/internal/database"
	"seamerkado_buyer/internal/handlers"
	"seamerkado_buyer/internal/metrics"
	"seamerkado_buyer/internal/notifications"
	"seamerkado_buyer/internal/routes"
	"seamerkado_buyer/internal/services"
	"seamerkado_buyer/internal/session"
)

func main() {
	config.Load()
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("❌ Configuration invalide")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("❌ Impossible de se connecter au stockage")
	}
	defer conns.Close()

	m := metrics.NewBuyerMetrics()
	hc := clients.NewHTTPClient(cfg.HTTPTimeout)
	seller := clients.NewSellerClient(cfg.SellerServiceURL, hc)
	buyer := clients.NewBuyerClient(cfg.BuyerServiceURL, hc)

	store := conns.Store()
	cartStore := cart.NewStore(store, cfg.CartTTL, m)
	selection := cart.NewSelection(store, cfg.CartTTL)
	book := addresses.NewBook(store)

	var proofs checkout.ProofStore
	if conns.MinIO != nil {
		proofs = services.NewMinioProofStore(conns.MinIO, cfg.MinioBucket)
		log.Println("✅ Preuves de paiement stockées sur MinIO")
	}
	checkoutSvc := checkout.NewService(checkout.Deps{
		KV:        store,
		Cart:      cartStore,
		Selection: selection,
		Addresses: book,
		Orders:    seller,
		Proofs:    proofs,
		Metrics:   m,
	})

	var search *services.SearchIndex
	if conns.Elastic != nil {
		search = services.NewSearchIndex(conns.Elastic)
		if err := search.EnsureIndex(ctx); err != nil {
			log.WithError(err).Warn("⚠️ Index Elasticsearch indisponible, recherche en mémoire")
			search = nil
		} else {
			go search.RunIndexer(ctx, seller, cfg.SearchReindexEvery)
		}
	}

	sessions := session.NewManager(session.NewCookieStore(cfg.SessionSecret, cfg.SecureCookies), cfg.SessionJWTSecret)
	notifSvc := notifications.NewService(buyer, m)

	h := handlers.New(handlers.Deps{
		Sessions:      sessions,
		Store:         store,
		Cart:          cartStore,
		Selection:     selection,
		Addresses:     book,
		Checkout:      checkoutSvc,
		Notifications: notifSvc,
		Poller:        notifications.NewPoller(notifSvc, cfg.NotificationPollInterval),
		Seller:        seller,
		Buyer:         buyer,
		Search:        search,
		QR:            services.PaymentQR{Account: cfg.GcashAccount},
		Images:        catalog.NewImages(cfg.SellerServiceURL),
	})

	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	routes.RegisterRoutes(r, h, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Sessions:       sessions,
		Counter:        conns.Counter(),
		APIMaxRequests: cfg.APIMaxRequests,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Println("🚀 Passerelle acheteur Sea Merkado lancée sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("❌ Serveur arrêté")
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt demandé, fermeture des connexions...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("❌ Arrêt du serveur incomplet")
	}
}
