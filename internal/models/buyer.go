package models

type BuyerProfile struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	CreatedAt  string `json:"created_at"`
}

// Purchase est une ligne de l'historique d'achats.
type Purchase struct {
	PurchaseID  int64  `json:"purchase_id"`
	ProductName string `json:"product_name"`
	Price       Number `json:"price"`
	Quantity    Number `json:"quantity"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	ImageURL    string `json:"image_url,omitempty"`
	Rating      Number `json:"rating,omitempty"`
}
