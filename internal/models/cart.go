package models

// DefaultStockCeiling borne la quantité quand le stock n'est pas connu.
const DefaultStockCeiling = 999

// CartItem est une ligne du panier : les champs produit plus la quantité choisie.
type CartItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	// StockKnown distingue un stock épuisé (0 connu) d'un stock jamais renseigné.
	StockKnown bool    `json:"stock_known,omitempty"`
	Category   string  `json:"category,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	SellerID   int64   `json:"seller_id,omitempty"`
	Quantity   int     `json:"quantity"`
}

// NewCartItem crée une ligne de quantité 1 à partir d'un produit.
func NewCartItem(p Product) CartItem {
	stock := p.StockLevel()
	return CartItem{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.EffectivePrice(),
		Stock:      stock,
		StockKnown: stock > 0,
		Category:   p.Category,
		Unit:       p.Unit,
		ImageURL:   p.ImageURL,
		Rating:     p.EffectiveRating(),
		SellerID:   p.SellerID,
		Quantity:   1,
	}
}

// MaxQuantity vaut le stock connu (0 si épuisé), sinon DefaultStockCeiling.
func (i CartItem) MaxQuantity() int {
	if i.StockKnown || i.Stock > 0 {
		return max(i.Stock, 0)
	}
	return DefaultStockCeiling
}

// Available est faux pour une ligne dont le stock connu est épuisé.
func (i CartItem) Available() bool {
	return i.MaxQuantity() > 0
}

// ClampQuantity ramène q dans [1, MaxQuantity].
func (i CartItem) ClampQuantity(q int) int {
	if limit := i.MaxQuantity(); q > limit {
		q = limit
	}
	if q < 1 {
		q = 1
	}
	return q
}

func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// UnitOr renvoie l'unité de vente ou fallback.
func (i CartItem) UnitOr(fallback string) string {
	if i.Unit == "" {
		return fallback
	}
	return i.Unit
}

// CartTotal additionne les sous-totaux.
func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
