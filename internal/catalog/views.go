package catalog

import (
	"fmt"
	"strings"
	"time"

	"seamerkado_buyer/internal/models"
)

// LowStockThreshold signale les produits presque épuisés.
const LowStockThreshold = 5

// Images résout les chemins relatifs renvoyés par le service vendeur.
type Images struct {
	sellerBase string
}

func NewImages(sellerServiceURL string) Images {
	return Images{sellerBase: strings.TrimRight(sellerServiceURL, "/")}
}

// Product : "<vendeur>/uploads/<image>", vide si le produit n'a pas d'image.
func (i Images) Product(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return i.sellerBase + "/uploads/" + strings.TrimLeft(path, "/")
}

// Logo : les logos sont déjà préfixés par /uploads côté vendeur.
func (i Images) Logo(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return i.sellerBase + path
}

// ProductCard est un produit prêt à afficher.
type ProductCard struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Unit        string  `json:"unit,omitempty"`
	Category    string  `json:"category,omitempty"`
	ImageURL    string  `json:"image_url"`
	Rating      float64 `json:"rating"`
	Stars       string  `json:"stars"`
	RatingLabel string  `json:"rating_label"`
	Available   bool    `json:"available"`
	LowStock    bool    `json:"low_stock"`
	SalesCount  int     `json:"sales_count"`
	SellerID    int64   `json:"seller_id,omitempty"`
}

func (i Images) ProductCard(p models.Product) ProductCard {
	rating := clampRating(p.EffectiveRating())
	stock := p.StockLevel()
	return ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.EffectivePrice(),
		Stock:       stock,
		Unit:        p.Unit,
		Category:    p.Category,
		ImageURL:    i.Product(p.ImageURL),
		Rating:      rating,
		Stars:       Stars(rating),
		RatingLabel: RatingLabel(rating),
		Available:   stock > 0,
		LowStock:    stock <= LowStockThreshold,
		SalesCount:  p.SalesCount.Int(),
		SellerID:    p.SellerID,
	}
}

func (i Images) ProductCards(products []models.Product) []ProductCard {
	out := make([]ProductCard, 0, len(products))
	for _, p := range products {
		out = append(out, i.ProductCard(p))
	}
	return out
}

// PurchaseCard est une ligne de l'historique d'achats.
type PurchaseCard struct {
	PurchaseID  int64   `json:"purchase_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	OrderNumber string  `json:"order_number"`
	Status      string  `json:"status"`
	Date        string  `json:"date"`
	ImageURL    string  `json:"image_url"`
	Stars       string  `json:"stars"`
}

func (i Images) PurchaseCards(purchases []models.Purchase) []PurchaseCard {
	out := make([]PurchaseCard, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, PurchaseCard{
			PurchaseID:  p.PurchaseID,
			ProductName: p.ProductName,
			Price:       p.Price.Float(),
			Quantity:    p.Quantity.Float(),
			OrderNumber: p.OrderNumber,
			Status:      p.Status,
			Date:        formatDate(p.CreatedAt),
			ImageURL:    i.Product(p.ImageURL),
			Stars:       Stars(p.Rating.Float()),
		})
	}
	return out
}

// ShopCard résume une boutique dans la liste.
type ShopCard struct {
	SellerID     int64  `json:"seller_id"`
	ShopName     string `json:"shop_name"`
	LogoURL      string `json:"logo_url"`
	ProductCount int    `json:"product_count"`
	ProductLabel string `json:"product_label"`
}

func (i Images) ShopCards(shops []models.Shop) []ShopCard {
	out := make([]ShopCard, 0, len(shops))
	for _, s := range NormalizeShops(shops) {
		out = append(out, ShopCard{
			SellerID:     s.SellerID,
			ShopName:     s.ShopName,
			LogoURL:      i.Logo(s.Logo),
			ProductCount: len(s.Products),
			ProductLabel: ProductLabel(len(s.Products)),
		})
	}
	return out
}

// ProductLabel : "1 Product", "3 Products".
func ProductLabel(n int) string {
	if n == 1 {
		return "1 Product"
	}
	return fmt.Sprintf("%d Products", n)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func formatDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return s
}
