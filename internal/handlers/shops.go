package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/catalog"
)

const defaultShopTitle = "Shop Products"

// 🏪 GET /api/shops
func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.buyer.Shops(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("❌ Erreur récupération boutiques")
		c.JSON(http.StatusOK, gin.H{"shops": []catalog.ShopCard{}, "error": "Failed to load shops."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": h.images.ShopCards(shops)})
}

// 🏪 GET /api/shops/:id/products?name=
func (h *Handler) ShopProducts(c *gin.Context) {
	sellerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shop id."})
		return
	}
	title := c.Query("name")
	if title == "" {
		title = defaultShopTitle
	}

	products, err := catalog.ShopProducts(c.Request.Context(), h.buyer, sellerID)
	if err != nil {
		log.WithError(err).WithField("seller_id", sellerID).Error("❌ Erreur récupération produits boutique")
		c.JSON(http.StatusOK, gin.H{"title": title, "products": []catalog.ProductCard{}, "error": "Failed to load products."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": title, "products": h.images.ProductCards(products)})
}
