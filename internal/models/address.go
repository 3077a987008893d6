package models

import (
	"strings"
	"time"
)

// SavedAddress est une fiche de livraison réutilisable, propre à un client.
type SavedAddress struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeliveryInfo regroupe les champs de livraison saisis au checkout.
type DeliveryInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

// Complete vérifie que nom, adresse et contact sont renseignés (notes facultatives).
func (d DeliveryInfo) Complete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.Address) != "" &&
		strings.TrimSpace(d.Contact) != ""
}
