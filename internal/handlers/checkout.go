package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/checkout"
	"seamerkado_buyer/internal/models"
)

// CheckoutView est l'état rendu de la fenêtre de paiement.
type CheckoutView struct {
	Draft     *checkout.Draft       `json:"draft"`
	Addresses []models.SavedAddress `json:"saved_addresses"`
	Items     []models.CartItem     `json:"items"`
	Total     float64               `json:"total"`
	QR        string                `json:"qr_code"`
}

func (h *Handler) checkoutView(ctx context.Context, id string, d *checkout.Draft) (CheckoutView, error) {
	list, err := h.addresses.List(ctx, id)
	if err != nil {
		return CheckoutView{}, err
	}
	items, err := h.cart.Get(ctx, id)
	if err != nil {
		return CheckoutView{}, err
	}
	ids, err := h.selection.Get(ctx, id, items)
	if err != nil {
		return CheckoutView{}, err
	}
	selected := cart.Selected(items, ids)
	total := models.CartTotal(selected)
	qr, err := h.paymentQR(ctx, id, total)
	if err != nil {
		log.WithError(err).Warn("⚠️ QR de paiement indisponible")
	}
	return CheckoutView{Draft: d, Addresses: list, Items: selected, Total: total, QR: qr}, nil
}

// paymentQR renvoie le QR du vendeur s'il est en cache, sinon un QR généré.
func (h *Handler) paymentQR(ctx context.Context, id string, total float64) (string, error) {
	ref, err := h.checkout.SellerQR(ctx)
	if err != nil {
		return "", err
	}
	if ref != "" {
		return ref, nil
	}
	return h.qr.DataURL(total, "SM-"+id)
}

// respondDraft renvoie la vue complète après une opération sur le brouillon.
func (h *Handler) respondDraft(c *gin.Context, op func(context.Context, string) (*checkout.Draft, error)) {
	ctx := c.Request.Context()
	id := customerID(c)
	d, err := op(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.checkoutView(ctx, id, d)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// 🟢 GET /api/checkout
func (h *Handler) GetCheckout(c *gin.Context) {
	h.respondDraft(c, h.checkout.Draft)
}

// 🟢 POST /api/checkout/open
func (h *Handler) OpenCheckout(c *gin.Context) {
	h.respondDraft(c, h.checkout.Open)
}

// 🔴 POST /api/checkout/close
func (h *Handler) CloseCheckout(c *gin.Context) {
	h.respondDraft(c, h.checkout.Close)
}

// ✏️ PUT /api/checkout/delivery
func (h *Handler) SetDelivery(c *gin.Context) {
	var info models.DeliveryInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery information."})
		return
	}
	h.respondDraft(c, func(ctx context.Context, id string) (*checkout.Draft, error) {
		return h.checkout.SetDelivery(ctx, id, info)
	})
}

// 📍 POST /api/checkout/addresses/:id/use
func (h *Handler) UseSavedAddress(c *gin.Context) {
	addressID := c.Param("id")
	h.respondDraft(c, func(ctx context.Context, id string) (*checkout.Draft, error) {
		return h.checkout.UseSavedAddress(ctx, id, addressID)
	})
}

// 📍 POST /api/checkout/addresses
// Enregistre la livraison actuellement saisie.
func (h *Handler) SaveAddress(c *gin.Context) {
	saved, list, err := h.checkout.SaveAddress(c.Request.Context(), customerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Address saved!",
		"address":         saved,
		"saved_addresses": list,
	})
}

// 🔴 DELETE /api/checkout/addresses/:id
func (h *Handler) DeleteAddress(c *gin.Context) {
	list, err := h.checkout.DeleteAddress(c.Request.Context(), customerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_addresses": list})
}

// 📎 POST /api/checkout/proof (multipart, champ "proof")
func (h *Handler) AttachProof(c *gin.Context) {
	header, err := c.FormFile("proof")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": checkout.ErrProofNotImage.Message})
		return
	}
	f, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	// Un octet de plus que la limite suffit à la détecter
	data, err := io.ReadAll(io.LimitReader(f, checkout.MaxProofSize+1))
	if err != nil {
		respondError(c, err)
		return
	}
	file := models.ProofFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	h.respondDraft(c, func(ctx context.Context, id string) (*checkout.Draft, error) {
		return h.checkout.AttachProof(ctx, id, file)
	})
}

// 🔴 DELETE /api/checkout/proof
func (h *Handler) RemoveProof(c *gin.Context) {
	h.respondDraft(c, h.checkout.RemoveProof)
}

// ☑️ PUT /api/checkout/confirm
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var input struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request."})
		return
	}
	h.respondDraft(c, func(ctx context.Context, id string) (*checkout.Draft, error) {
		return h.checkout.SetConfirmed(ctx, id, input.Confirmed)
	})
}

// 💳 POST /api/checkout/place
func (h *Handler) PlaceOrder(c *gin.Context) {
	id := customerID(c)
	result, err := h.checkout.PlaceOrder(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).WithField("customer_id", id).Warn("❌ Commande non passée")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// 🟢 GET /api/checkout/qr
func (h *Handler) PaymentQR(c *gin.Context) {
	ctx := c.Request.Context()
	id := customerID(c)
	items, err := h.cart.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	ids, err := h.selection.Get(ctx, id, items)
	if err != nil {
		respondError(c, err)
		return
	}
	qr, err := h.paymentQR(ctx, id, models.CartTotal(cart.Selected(items, ids)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr_code": qr})
}
