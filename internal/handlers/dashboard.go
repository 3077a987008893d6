package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"seamerkado_buyer/internal/catalog"
	"seamerkado_buyer/internal/models"
)

// 🟢 GET /api/dashboard?q=
// Produits, achats récents et badge panier sont chargés en parallèle ; chaque
// bloc se dégrade seul en liste vide.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	id := customerID(c)
	term := c.Query("q")

	var (
		products  []models.Product
		purchases []models.Purchase
		count     int
	)
	var g errgroup.Group
	g.Go(func() error {
		p, err := h.seller.Products(ctx)
		if err != nil {
			log.WithError(err).Error("❌ Erreur récupération produits")
			p = []models.Product{}
		}
		products = p
		return nil
	})
	g.Go(func() error {
		p, err := h.buyer.Purchases(ctx, id)
		if err != nil {
			log.WithError(err).WithField("buyer_id", id).Error("❌ Erreur récupération achats")
			p = []models.Purchase{}
		}
		purchases = p
		return nil
	})
	g.Go(func() error {
		n, err := h.cart.Count(ctx, id)
		if err != nil {
			log.WithError(err).WithField("customer_id", id).Warn("⚠️ Badge panier indisponible")
		}
		count = n
		return nil
	})
	_ = g.Wait()

	c.JSON(http.StatusOK, gin.H{
		"heading":    catalog.Heading(term),
		"search":     term,
		"products":   h.images.ProductCards(h.searchProducts(ctx, products, term)),
		"purchases":  h.images.PurchaseCards(purchases),
		"cart_count": count,
	})
}

// searchProducts passe par Elasticsearch quand il est configuré, sinon filtre en mémoire.
func (h *Handler) searchProducts(ctx context.Context, products []models.Product, term string) []models.Product {
	// L'index ignore les espaces autour du terme : ces cas restent en mémoire
	if h.search == nil || term == "" || strings.TrimSpace(term) != term {
		return catalog.Filter(products, term)
	}
	ids, err := h.search.Search(ctx, term)
	if err != nil {
		log.WithError(err).Warn("⚠️ Recherche Elasticsearch échouée, filtre en mémoire")
		return catalog.Filter(products, term)
	}
	hit := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		hit[id] = struct{}{}
	}
	out := make([]models.Product, 0, len(ids))
	for _, p := range products {
		if _, ok := hit[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
