package models

// Product est la fiche renvoyée par le catalogue (lecture seule côté acheteur).
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         Number  `json:"price"`
	NewPrice      *Number `json:"new_price,omitempty"`
	Stock         Number  `json:"stock"`
	Category      string  `json:"category,omitempty"`
	Unit          string  `json:"unit,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	Rating        *Number `json:"rating,omitempty"`
	AvgRating     *Number `json:"avg_rating,omitempty"`
	ProductRating *Number `json:"product_rating,omitempty"`
	SalesCount    Number  `json:"sales_count,omitempty"`
	SellerID      int64   `json:"seller_id,omitempty"`
}

// EffectivePrice renvoie le prix promotionnel s'il existe.
func (p Product) EffectivePrice() float64 {
	if p.NewPrice != nil {
		return p.NewPrice.Float()
	}
	return p.Price.Float()
}

// EffectiveRating : avg_rating, puis rating, puis product_rating.
func (p Product) EffectiveRating() float64 {
	for _, r := range []*Number{p.AvgRating, p.Rating, p.ProductRating} {
		if r != nil {
			return r.Float()
		}
	}
	return 0
}

func (p Product) StockLevel() int { return p.Stock.Int() }
