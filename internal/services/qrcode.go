package services

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// PaymentQR génère le QR GCash affiché quand le vendeur n'en a pas fourni.
type PaymentQR struct {
	Account string
}

// Payload est le texte encodé : compte, montant et référence de l'acheteur.
func (q PaymentQR) Payload(amount float64, reference string) string {
	parts := []string{"GCASH"}
	if q.Account != "" {
		parts = append(parts, q.Account)
	}
	parts = append(parts, fmt.Sprintf("PHP%.2f", amount))
	if reference != "" {
		parts = append(parts, reference)
	}
	return strings.Join(parts, "|")
}

// PNG encode le QR en image 256x256.
func (q PaymentQR) PNG(amount float64, reference string) ([]byte, error) {
	return qrcode.Encode(q.Payload(amount, reference), qrcode.Medium, 256)
}

// DataURL renvoie le QR prêt à mettre dans <img src="...">.
func (q PaymentQR) DataURL(amount float64, reference string) (string, error) {
	png, err := q.PNG(amount, reference)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
