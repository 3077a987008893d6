package models

// PaymentModeGcashQR est le seul mode de paiement proposé à l'acheteur.
const PaymentModeGcashQR = "Gcash QR"

// Proof référence une preuve de paiement en attente d'envoi.
type Proof struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Preview     string `json:"preview"`
	ObjectKey   string `json:"object_key,omitempty"`
}

// ProofFile est le fichier brut reçu de l'acheteur.
type ProofFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ProofUpload est le formulaire multipart envoyé au service commandes.
type ProofUpload struct {
	File            ProofFile
	CustomerName    string
	CustomerContact string
}

// OrderRequest est le corps de création de commande.
type OrderRequest struct {
	Customer       DeliveryInfo `json:"customer"`
	Cart           []CartItem   `json:"cart"`
	Total          float64      `json:"total"`
	PaymentMode    string       `json:"payment_mode"`
	Paid           bool         `json:"paid"`
	ProofOfPayment string       `json:"proof_of_payment"`
	BuyerID        string       `json:"buyer_id"`
}

type OrderResponse struct {
	Message     string `json:"message"`
	OrderID     Number `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}
