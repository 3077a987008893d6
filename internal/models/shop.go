package models

// Shop est une vitrine vendeur avec ses produits embarqués.
type Shop struct {
	SellerID int64     `json:"seller_id"`
	ShopName string    `json:"shop_name"`
	Logo     string    `json:"logo,omitempty"`
	Products []Product `json:"products"`
}
