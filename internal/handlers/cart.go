package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/models"
)

// CartView est l'état rendu de la page panier.
type CartView struct {
	Items         []models.CartItem `json:"items"`
	Selected      []int64           `json:"selected"`
	AllSelected   bool              `json:"all_selected"`
	Unavailable   []int64           `json:"unavailable"`
	Count         int               `json:"count"`
	Total         float64           `json:"total"`
	SelectedTotal float64           `json:"selected_total"`
	Warning       string            `json:"warning,omitempty"`
}

func newCartView(items []models.CartItem, selected []int64) CartView {
	if selected == nil {
		selected = []int64{}
	}
	selectable := cart.Selectable(items)
	unavailable := []int64{}
	for _, item := range items {
		if !item.Available() {
			unavailable = append(unavailable, item.ID)
		}
	}
	return CartView{
		Items:         items,
		Selected:      selected,
		AllSelected:   len(selectable) > 0 && len(selected) == len(selectable),
		Unavailable:   unavailable,
		Count:         cart.CountItems(items),
		Total:         models.CartTotal(items),
		SelectedTotal: models.CartTotal(cart.Selected(items, selected)),
	}
}

// cartView relit la sélection pour les lignes données.
func (h *Handler) cartView(ctx context.Context, id string, items []models.CartItem) (CartView, error) {
	selected, err := h.selection.Get(ctx, id, items)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(items, selected), nil
}

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id."})
		return 0, false
	}
	return id, true
}

// 🟢 GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.cartView(ctx, id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// 🔄 POST /api/cart/refresh
// Chargement de la page panier : prix et stock frais, puis tout est coché.
func (h *Handler) RefreshCart(c *gin.Context) {
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Refresh(ctx, id, h.buyer)
	degraded := errors.Is(err, cart.ErrCatalogUnavailable)
	if err != nil && !degraded {
		respondError(c, err)
		return
	}
	selected, err := h.selection.SelectAll(ctx, id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	view := newCartView(items, selected)
	if degraded {
		view.Warning = "Could not refresh product details."
	}
	c.JSON(http.StatusOK, view)
}

// 🟢 POST /api/cart/items
// Le corps est la fiche produit telle qu'affichée sur le tableau de bord.
func (h *Handler) AddToCart(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil || product.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product."})
		return
	}
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Add(ctx, id, product)
	if err != nil {
		respondError(c, err)
		return
	}
	log.WithFields(log.Fields{"customer_id": id, "product_id": product.ID}).Info("🛒 Produit ajouté au panier")
	c.JSON(http.StatusOK, gin.H{
		"message": "Added to cart!",
		"count":   cart.CountItems(items),
	})
}

// ✏️ PUT /api/cart/items/:id
func (h *Handler) SetCartQuantity(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity."})
		return
	}
	h.respondCart(c, func(ctx context.Context, id string) ([]models.CartItem, error) {
		return h.cart.SetQuantity(ctx, id, productID, input.Quantity)
	})
}

// ➕ POST /api/cart/items/:id/increment
func (h *Handler) IncrementCartItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	h.respondCart(c, func(ctx context.Context, id string) ([]models.CartItem, error) {
		return h.cart.Increment(ctx, id, productID)
	})
}

// ➖ POST /api/cart/items/:id/decrement
func (h *Handler) DecrementCartItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	h.respondCart(c, func(ctx context.Context, id string) ([]models.CartItem, error) {
		return h.cart.Decrement(ctx, id, productID)
	})
}

// 🔴 DELETE /api/cart/items/:id
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	h.respondCart(c, func(ctx context.Context, id string) ([]models.CartItem, error) {
		return h.cart.Remove(ctx, id, productID)
	})
}

// ☑️ POST /api/cart/items/:id/toggle
func (h *Handler) ToggleCartItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	selected, err := h.selection.Toggle(ctx, id, items, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(items, selected))
}

// ☑️ POST /api/cart/toggle-all
func (h *Handler) ToggleAllCartItems(c *gin.Context) {
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	selected, err := h.selection.ToggleAll(ctx, id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(items, selected))
}

// 🟢 GET /api/cart/count
func (h *Handler) CartCount(c *gin.Context) {
	n, err := h.cart.Count(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// respondCart applique une mutation et renvoie le panier à jour. Une
// StockLimitError renvoie l'avertissement avec le panier inchangé.
func (h *Handler) respondCart(c *gin.Context, mutate func(context.Context, string) ([]models.CartItem, error)) {
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := mutate(ctx, id)

	var stockErr *cart.StockLimitError
	if err != nil && !errors.As(err, &stockErr) {
		respondError(c, err)
		return
	}
	view, viewErr := h.cartView(ctx, id, items)
	if viewErr != nil {
		respondError(c, viewErr)
		return
	}
	if stockErr != nil {
		view.Warning = stockErr.Error()
	}
	c.JSON(http.StatusOK, view)
}
