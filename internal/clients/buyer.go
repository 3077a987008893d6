package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"seamerkado_buyer/internal/models"
)

// BuyerClient parle au service acheteur : détails produit, historique,
// profil, notifications et boutiques.
type BuyerClient struct {
	base
}

func NewBuyerClient(baseURL string, hc *http.Client) *BuyerClient {
	return &BuyerClient{base: newBase(baseURL, hc)}
}

// ProductDetails renvoie les fiches à jour des produits demandés.
func (c *BuyerClient) ProductDetails(ctx context.Context, ids []int64) ([]models.Product, error) {
	in := struct {
		ProductIDs []int64 `json:"product_ids"`
	}{ProductIDs: ids}
	var out []models.Product
	if err := c.doJSON(ctx, http.MethodPost, "/api/products/details", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BuyerClient) Purchases(ctx context.Context, buyerID string) ([]models.Purchase, error) {
	var out []models.Purchase
	path := "/api/buyer/purchases?buyer_id=" + url.QueryEscape(buyerID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Purchase{}
	}
	return out, nil
}

func (c *BuyerClient) Profile(ctx context.Context, customerID string) (models.BuyerProfile, error) {
	var out models.BuyerProfile
	err := c.doJSON(ctx, http.MethodGet, "/api/buyer/profile/"+url.PathEscape(customerID), nil, &out)
	return out, err
}

func (c *BuyerClient) Notifications(ctx context.Context, buyerID string) (models.NotificationSnapshot, error) {
	var out models.NotificationSnapshot
	path := "/api/buyer/" + url.PathEscape(buyerID) + "/notifications"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return models.NotificationSnapshot{}, err
	}
	if out.Notifications == nil {
		out.Notifications = []models.Notification{}
	}
	return out, nil
}

func (c *BuyerClient) MarkNotificationRead(ctx context.Context, buyerID string, notificationID int64) error {
	in := struct {
		CustomerID string `json:"customer_id"`
	}{CustomerID: buyerID}
	path := "/api/buyer/notifications/" + strconv.FormatInt(notificationID, 10) + "/read"
	return c.doJSON(ctx, http.MethodPut, path, in, nil)
}

func (c *BuyerClient) MarkAllNotificationsRead(ctx context.Context, buyerID string) error {
	path := "/api/buyer/" + url.PathEscape(buyerID) + "/notifications/read-all"
	return c.doJSON(ctx, http.MethodPut, path, struct{}{}, nil)
}

// Shops liste les boutiques avec leurs produits embarqués.
func (c *BuyerClient) Shops(ctx context.Context) ([]models.Shop, error) {
	var out []models.Shop
	if err := c.doJSON(ctx, http.MethodGet, "/api/shop", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ShopProducts accepte {"products": [...]} ou un tableau nu.
func (c *BuyerClient) ShopProducts(ctx context.Context, sellerID int64) ([]models.Product, error) {
	path := "/api/shop/" + strconv.FormatInt(sellerID, 10) + "/products"
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeProducts(raw)
}

func decodeProducts(raw json.RawMessage) ([]models.Product, error) {
	var list []models.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("réponse produits boutique illisible: %w", err)
	}
	return wrapped.Products, nil
}
