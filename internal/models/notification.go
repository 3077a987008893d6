package models

// Notification appartient au service distant ; l'acheteur n'en garde qu'un miroir.
type Notification struct {
	ID        int64  `json:"id"`
	ShopName  string `json:"shop_name"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// NotificationSnapshot est la réponse complète d'un tour de polling.
type NotificationSnapshot struct {
	Notifications []Notification `json:"notifications"`
	Count         int            `json:"count"`
}
