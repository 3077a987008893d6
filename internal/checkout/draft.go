// Package checkout porte le brouillon de commande : livraison, preuve de
// paiement, confirmation, puis soumission aux services distants.
package checkout

import (
	"errors"

	"seamerkado_buyer/internal/models"
)

// Stage est l'état de la fenêtre de checkout.
type Stage string

const (
	StageClosed     Stage = "closed"
	StageOpen       Stage = "open"
	StageSubmitting Stage = "submitting"
)

// Erreurs de validation, vérifiées dans cet ordre.
var (
	ErrDeliveryIncomplete = models.NewUserError("Please fill in all required delivery information.")
	ErrProofMissing       = models.NewUserError("Please upload proof of payment.")
	ErrNotConfirmed       = models.NewUserError("Please confirm payment.")
	ErrNothingSelected    = models.NewUserError("Please select at least one item.")

	ErrOrderInProgress = models.NewUserError("Your order is already being submitted.")
	ErrCheckoutClosed  = errors.New("checkout: fenêtre fermée")
)

// Draft est transitoire : il disparaît après une commande réussie.
type Draft struct {
	Stage             Stage               `json:"stage"`
	Delivery          models.DeliveryInfo `json:"delivery"`
	SelectedAddressID string              `json:"selected_address_id,omitempty"`
	Proof             *models.Proof       `json:"proof,omitempty"`
	Confirmed         bool                `json:"confirmed"`
	LastError         string              `json:"last_error,omitempty"`
}

func NewDraft() *Draft {
	return &Draft{Stage: StageClosed}
}

// Open ouvre la fenêtre ; les champs déjà saisis sont conservés.
func (d *Draft) Open() {
	if d.Stage == StageClosed {
		d.Stage = StageOpen
	}
	d.LastError = ""
}

// Close ferme la fenêtre sans effacer la saisie.
func (d *Draft) Close() {
	d.Stage = StageClosed
	d.LastError = ""
}

func (d *Draft) SetDelivery(info models.DeliveryInfo) {
	d.Delivery = info
}

// UseAddress recopie nom, adresse et contact ; les notes sont conservées.
func (d *Draft) UseAddress(a models.SavedAddress) {
	d.Delivery = models.DeliveryInfo{
		Name:    a.Name,
		Address: a.Address,
		Contact: a.Contact,
		Notes:   d.Delivery.Notes,
	}
	d.SelectedAddressID = a.ID
}

// ClearAddress efface la sélection si elle pointait sur id.
func (d *Draft) ClearAddress(id string) bool {
	if d.SelectedAddressID != id {
		return false
	}
	d.SelectedAddressID = ""
	return true
}

// AttachProof remplace la preuve ; l'ancienne est renvoyée pour être libérée.
func (d *Draft) AttachProof(p models.Proof) *models.Proof {
	prev := d.Proof
	d.Proof = &p
	return prev
}

// RemoveProof retire la preuve et annule la confirmation.
func (d *Draft) RemoveProof() *models.Proof {
	prev := d.Proof
	d.Proof = nil
	d.Confirmed = false
	return prev
}

func (d *Draft) SetConfirmed(v bool) {
	d.Confirmed = v
}

func (d *Draft) AddressChosen() bool { return d.SelectedAddressID != "" }

func (d *Draft) HasProof() bool { return d.Proof != nil }

// Validate applique les préconditions de commande dans l'ordre :
// livraison, preuve, confirmation, sélection.
func (d *Draft) Validate(selected []models.CartItem) error {
	if !d.Delivery.Complete() {
		return ErrDeliveryIncomplete
	}
	if d.Proof == nil {
		return ErrProofMissing
	}
	if !d.Confirmed {
		return ErrNotConfirmed
	}
	if len(selected) == 0 {
		return ErrNothingSelected
	}
	return nil
}

// Reset remet le brouillon à zéro (fenêtre fermée).
func (d *Draft) Reset() {
	*d = *NewDraft()
}

func blockReason(err error) string {
	switch {
	case errors.Is(err, ErrDeliveryIncomplete):
		return "delivery"
	case errors.Is(err, ErrProofMissing):
		return "proof"
	case errors.Is(err, ErrNotConfirmed):
		return "confirmation"
	case errors.Is(err, ErrNothingSelected):
		return "selection"
	default:
		return "other"
	}
}
