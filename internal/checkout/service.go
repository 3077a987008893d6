package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/addresses"
	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/cart"
	"seamerkado_buyer/internal/metrics"
	"seamerkado_buyer/internal/models"
)

const (
	draftTTL = 24 * time.Hour
	// lockTTL borne la durée d'une soumission si l'instance tombe en route.
	lockTTL = 2 * time.Minute

	// SellerQRKey est la clé de la référence du QR GCash du vendeur.
	SellerQRKey = "seller_qr_code"

	MsgOrderPlaced     = "Order placed successfully!"
	MsgOrderRejected   = "Failed to place order."
	MsgOrderNetworkErr = "Error placing order. Please try again."
)

// OrderPlacer envoie la preuve puis la commande au service vendeur.
type OrderPlacer interface {
	UploadProof(ctx context.Context, upload models.ProofUpload) (string, error)
	CreateOrder(ctx context.Context, order models.OrderRequest) (models.OrderResponse, error)
}

// SubmitError porte le message affiché après un échec de soumission.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error { return e.Err }

func (e *SubmitError) UserMessage() string { return e.Message }

// Result décrit une commande acceptée et le panier restant.
type Result struct {
	Message string               `json:"message"`
	Order   models.OrderResponse `json:"order"`
	Cart    []models.CartItem    `json:"cart"`
	Count   int                  `json:"count"`
	Total   float64              `json:"total"`
}

// Deps regroupe les collaborateurs du service.
type Deps struct {
	KV        cache.Store
	Cart      *cart.Store
	Selection *cart.Selection
	Addresses *addresses.Book
	Orders    OrderPlacer
	Proofs    ProofStore
	Metrics   *metrics.BuyerMetrics
}

// Service conserve le brouillon sous "checkout:<client>" pour que le parcours
// s'étale sur plusieurs requêtes.
type Service struct {
	kv        cache.Store
	cart      *cart.Store
	selection *cart.Selection
	book      *addresses.Book
	orders    OrderPlacer
	proofs    ProofStore
	metrics   *metrics.BuyerMetrics
}

func NewService(d Deps) *Service {
	proofs := d.Proofs
	if proofs == nil {
		proofs = InlineProofStore{}
	}
	return &Service{
		kv:        d.KV,
		cart:      d.Cart,
		selection: d.Selection,
		book:      d.Addresses,
		orders:    d.Orders,
		proofs:    proofs,
		metrics:   d.Metrics,
	}
}

func draftKey(customerID string) string { return "checkout:" + customerID }

func lockKey(customerID string) string { return "checkout_lock:" + customerID }

// lock réserve la soumission pour ce client. Sans Locker, le seul garde-fou
// reste l'étape "submitting" du brouillon.
func (s *Service) lock(ctx context.Context, customerID string) (func(), error) {
	locker, ok := s.kv.(cache.Locker)
	if !ok {
		return func() {}, nil
	}
	acquired, err := locker.SetNX(ctx, lockKey(customerID), []byte("1"), lockTTL)
	if err != nil {
		return nil, fmt.Errorf("verrou commande: %w", err)
	}
	if !acquired {
		return nil, ErrOrderInProgress
	}
	return func() {
		if err := s.kv.Delete(context.WithoutCancel(ctx), lockKey(customerID)); err != nil {
			log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Verrou de commande non libéré")
		}
	}, nil
}

// Draft renvoie le brouillon courant (fermé et vide s'il n'existe pas).
func (s *Service) Draft(ctx context.Context, customerID string) (*Draft, error) {
	d := NewDraft()
	err := cache.GetJSON(ctx, s.kv, draftKey(customerID), d)
	switch {
	case err == nil:
		return d, nil
	case errors.Is(err, cache.ErrNotFound):
		return NewDraft(), nil
	case errors.Is(err, cache.ErrCorrupt):
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Brouillon de commande illisible, réinitialisé")
		return NewDraft(), nil
	default:
		return nil, fmt.Errorf("lecture brouillon: %w", err)
	}
}

func (s *Service) save(ctx context.Context, customerID string, d *Draft) error {
	if err := cache.SetJSON(ctx, s.kv, draftKey(customerID), d, draftTTL); err != nil {
		return fmt.Errorf("écriture brouillon: %w", err)
	}
	return nil
}

// update applique fn puis sauvegarde ; refusé pendant une soumission.
func (s *Service) update(ctx context.Context, customerID string, fn func(*Draft) error) (*Draft, error) {
	d, err := s.Draft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if d.Stage == StageSubmitting {
		return d, ErrOrderInProgress
	}
	if err := fn(d); err != nil {
		return d, err
	}
	if err := s.save(ctx, customerID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Open(ctx context.Context, customerID string) (*Draft, error) {
	return s.update(ctx, customerID, func(d *Draft) error {
		d.Open()
		return nil
	})
}

// Close ferme la fenêtre ; possible dans tous les états.
func (s *Service) Close(ctx context.Context, customerID string) (*Draft, error) {
	d, err := s.Draft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	d.Close()
	if err := s.save(ctx, customerID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) SetDelivery(ctx context.Context, customerID string, info models.DeliveryInfo) (*Draft, error) {
	return s.update(ctx, customerID, func(d *Draft) error {
		d.SetDelivery(info)
		return nil
	})
}

// UseSavedAddress remplit la livraison depuis le carnet.
func (s *Service) UseSavedAddress(ctx context.Context, customerID, addressID string) (*Draft, error) {
	addr, err := s.book.Get(ctx, customerID, addressID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, customerID, func(d *Draft) error {
		d.UseAddress(addr)
		return nil
	})
}

// SaveAddress enregistre la livraison saisie dans le carnet.
func (s *Service) SaveAddress(ctx context.Context, customerID string) (models.SavedAddress, []models.SavedAddress, error) {
	d, err := s.Draft(ctx, customerID)
	if err != nil {
		return models.SavedAddress{}, nil, err
	}
	return s.book.Save(ctx, customerID, d.Delivery)
}

// DeleteAddress supprime l'adresse et la désélectionne si besoin ; les champs saisis restent.
func (s *Service) DeleteAddress(ctx context.Context, customerID, addressID string) ([]models.SavedAddress, error) {
	list, err := s.book.Delete(ctx, customerID, addressID)
	if err != nil {
		return nil, err
	}
	d, err := s.Draft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if d.ClearAddress(addressID) {
		if err := s.save(ctx, customerID, d); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// AttachProof valide puis met en attente la preuve ; l'ancienne est libérée.
func (s *Service) AttachProof(ctx context.Context, customerID string, file models.ProofFile) (*Draft, error) {
	if err := ValidateProof(file); err != nil {
		return nil, err
	}
	var previous *models.Proof
	d, err := s.update(ctx, customerID, func(d *Draft) error {
		staged, err := s.proofs.Stage(ctx, customerID, file)
		if err != nil {
			return fmt.Errorf("mise en attente de la preuve: %w", err)
		}
		previous = d.AttachProof(staged)
		return nil
	})
	if err != nil {
		return d, err
	}
	s.discard(ctx, customerID, previous)
	return d, nil
}

func (s *Service) RemoveProof(ctx context.Context, customerID string) (*Draft, error) {
	var previous *models.Proof
	d, err := s.update(ctx, customerID, func(d *Draft) error {
		previous = d.RemoveProof()
		return nil
	})
	if err != nil {
		return d, err
	}
	s.discard(ctx, customerID, previous)
	return d, nil
}

func (s *Service) SetConfirmed(ctx context.Context, customerID string, confirmed bool) (*Draft, error) {
	return s.update(ctx, customerID, func(d *Draft) error {
		d.SetConfirmed(confirmed)
		return nil
	})
}

// PlaceOrder vérifie les préconditions, envoie la preuve puis la commande des
// lignes sélectionnées. En cas d'échec le brouillon reste intact et rouvert.
func (s *Service) PlaceOrder(ctx context.Context, customerID string) (*Result, error) {
	unlock, err := s.lock(ctx, customerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.Draft(ctx, customerID)
	if err != nil {
		return nil, err
	}
	switch d.Stage {
	case StageSubmitting:
		return nil, ErrOrderInProgress
	case StageClosed:
		return nil, ErrCheckoutClosed
	}

	items, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ids, err := s.selection.Get(ctx, customerID, items)
	if err != nil {
		return nil, err
	}
	selected := cart.Selected(items, ids)

	if err := d.Validate(selected); err != nil {
		s.metrics.RecordCheckoutBlocked(blockReason(err))
		return nil, err
	}

	d.Stage = StageSubmitting
	d.LastError = ""
	if err := s.save(ctx, customerID, d); err != nil {
		return nil, err
	}

	resp, submitErr := s.submit(ctx, customerID, d, selected)
	// La suite doit aboutir même si le client a coupé la requête.
	ctx = context.WithoutCancel(ctx)
	if submitErr != nil {
		s.metrics.RecordOrderFailed()
		log.WithError(submitErr).WithField("customer_id", customerID).Error("❌ Échec de la commande")
		d.Stage = StageOpen
		d.LastError = submitErr.Message
		if err := s.save(ctx, customerID, d); err != nil {
			log.WithError(err).Warn("⚠️ Brouillon non restauré après échec")
		}
		return nil, submitErr
	}

	s.metrics.RecordOrderPlaced()
	log.WithFields(log.Fields{
		"customer_id": customerID,
		"items":       len(selected),
		"order":       resp.OrderNumber,
	}).Info("✅ Commande passée")

	remaining, err := s.cart.Prune(ctx, customerID, ids)
	if err != nil {
		return nil, fmt.Errorf("commande passée mais panier non mis à jour: %w", err)
	}
	if err := s.selection.Clear(ctx, customerID); err != nil {
		log.WithError(err).Warn("⚠️ Sélection non vidée après commande")
	}
	s.discard(ctx, customerID, d.Proof)
	d.Reset()
	if err := s.save(ctx, customerID, d); err != nil {
		log.WithError(err).Warn("⚠️ Brouillon non réinitialisé après commande")
	}

	msg := resp.Message
	if msg == "" {
		msg = MsgOrderPlaced
	}
	return &Result{
		Message: msg,
		Order:   resp,
		Cart:    remaining,
		Count:   cart.CountItems(remaining),
		Total:   models.CartTotal(remaining),
	}, nil
}

func (s *Service) submit(ctx context.Context, customerID string, d *Draft, selected []models.CartItem) (models.OrderResponse, *SubmitError) {
	data, err := s.proofs.Load(ctx, *d.Proof)
	if err != nil {
		return models.OrderResponse{}, &SubmitError{Message: MsgOrderNetworkErr, Err: err}
	}

	proofPath, err := s.orders.UploadProof(ctx, models.ProofUpload{
		File: models.ProofFile{
			FileName:    d.Proof.FileName,
			ContentType: d.Proof.ContentType,
			Data:        data,
		},
		CustomerName:    d.Delivery.Name,
		CustomerContact: d.Delivery.Contact,
	})
	if err != nil {
		return models.OrderResponse{}, &SubmitError{Message: MsgOrderNetworkErr, Err: err}
	}

	resp, err := s.orders.CreateOrder(ctx, models.OrderRequest{
		Customer:       d.Delivery,
		Cart:           selected,
		Total:          models.CartTotal(selected),
		PaymentMode:    models.PaymentModeGcashQR,
		Paid:           true,
		ProofOfPayment: proofPath,
		BuyerID:        customerID,
	})
	if err != nil {
		fallback := MsgOrderNetworkErr
		if models.StatusCode(err) > 0 {
			fallback = MsgOrderRejected
		}
		return models.OrderResponse{}, &SubmitError{Message: messageOr(err, fallback), Err: err}
	}
	return resp, nil
}

// messageOr renvoie le message du serveur s'il y en a un.
func messageOr(err error, fallback string) string {
	if msg := models.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}

func (s *Service) discard(ctx context.Context, customerID string, p *models.Proof) {
	if p == nil {
		return
	}
	if err := s.proofs.Discard(ctx, *p); err != nil {
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Preuve non libérée")
	}
}

// SellerQR renvoie la référence mise en cache, ou "" si aucune.
func (s *Service) SellerQR(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, SellerQRKey)
	if errors.Is(err, cache.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lecture QR vendeur: %w", err)
	}
	return string(raw), nil
}

func (s *Service) SetSellerQR(ctx context.Context, ref string) error {
	return s.kv.Set(ctx, SellerQRKey, []byte(ref), 0)
}
