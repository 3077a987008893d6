// Package cart gère le panier persistant de l'acheteur : lignes, quantités
// bornées par le stock, sélection pour le checkout et diffusion des changements.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/metrics"
	"seamerkado_buyer/internal/models"
)

// Événements publiés sur le canal du client.
const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

var ErrItemNotFound = errors.New("cart: article absent du panier")

// StockLimitError est renvoyée quand on veut dépasser le stock disponible.
type StockLimitError struct {
	Stock int
	Unit  string
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("Maximum available stock is %d %s", e.Stock, e.Unit)
}

func (e *StockLimitError) UserMessage() string { return e.Error() }

// Event est poussé aux vues ouvertes (badge panier).
type Event struct {
	Type  string            `json:"type"`
	Items []models.CartItem `json:"items"`
	Count int               `json:"count"`
	Total float64           `json:"total"`
}

// Store lit et écrit le panier (tableau JSON sous "cart:<client>").
// Les lectures-modifications-écritures ne sont pas atomiques : deux onglets
// concurrents peuvent s'écraser, comme avec le stockage navigateur.
type Store struct {
	kv      cache.Store
	ttl     time.Duration
	metrics *metrics.BuyerMetrics
}

func NewStore(kv cache.Store, ttl time.Duration, m *metrics.BuyerMetrics) *Store {
	return &Store{kv: kv, ttl: ttl, metrics: m}
}

func cartKey(customerID string) string { return "cart:" + customerID }

func eventsChannel(customerID string) string { return "cart_events:" + customerID }

// Get renvoie le panier, ou un panier vide s'il est absent ou corrompu.
func (s *Store) Get(ctx context.Context, customerID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := cache.GetJSON(ctx, s.kv, cartKey(customerID), &items)
	switch {
	case err == nil:
		if items == nil {
			items = []models.CartItem{}
		}
		return items, nil
	case errors.Is(err, cache.ErrNotFound):
		return []models.CartItem{}, nil
	case errors.Is(err, cache.ErrCorrupt):
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Panier illisible, on repart d'un panier vide")
		return []models.CartItem{}, nil
	default:
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
}

// Save écrase le panier et prévient les autres vues.
func (s *Store) Save(ctx context.Context, customerID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	if err := cache.SetJSON(ctx, s.kv, cartKey(customerID), items, s.ttl); err != nil {
		return fmt.Errorf("écriture panier: %w", err)
	}
	event := EventUpdated
	if len(items) == 0 {
		event = EventCleared
	}
	if err := s.kv.Publish(ctx, eventsChannel(customerID), event); err != nil {
		// La diffusion est best-effort : le panier est déjà sauvegardé
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Diffusion du changement de panier impossible")
	}
	return nil
}

// Add ajoute un produit : +1 s'il est déjà présent (borné par le stock connu), sinon quantité 1.
func (s *Store) Add(ctx context.Context, customerID string, product models.Product) ([]models.CartItem, error) {
	items, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID != product.ID {
			continue
		}
		if stock := product.StockLevel(); stock > 0 {
			items[i].Stock = stock
			items[i].StockKnown = true
		}
		items[i].Quantity = items[i].ClampQuantity(items[i].Quantity + 1)
		found = true
		break
	}
	if !found {
		items = append(items, models.NewCartItem(product))
	}

	if err := s.Save(ctx, customerID, items); err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation("add")
	return items, nil
}

// Remove retire une ligne ; sans effet si elle n'existe pas.
func (s *Store) Remove(ctx context.Context, customerID string, productID int64) ([]models.CartItem, error) {
	return s.Prune(ctx, customerID, []int64{productID})
}

// Prune retire toutes les lignes dont l'id figure dans ids (articles commandés).
func (s *Store) Prune(ctx context.Context, customerID string, ids []int64) ([]models.CartItem, error) {
	items, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	if err := s.Save(ctx, customerID, kept); err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation("remove")
	return kept, nil
}

// SetQuantity fixe la quantité, ramenée dans [1, stock].
func (s *Store) SetQuantity(ctx context.Context, customerID string, productID int64, quantity int) ([]models.CartItem, error) {
	return s.mutate(ctx, customerID, productID, func(item *models.CartItem) error {
		item.Quantity = item.ClampQuantity(quantity)
		return nil
	})
}

// Increment ajoute 1 ; au stock maximum renvoie *StockLimitError sans rien modifier.
func (s *Store) Increment(ctx context.Context, customerID string, productID int64) ([]models.CartItem, error) {
	return s.mutate(ctx, customerID, productID, func(item *models.CartItem) error {
		if item.Quantity >= item.MaxQuantity() {
			return &StockLimitError{Stock: item.MaxQuantity(), Unit: item.UnitOr("units")}
		}
		item.Quantity = item.ClampQuantity(item.Quantity + 1)
		return nil
	})
}

// Decrement retire 1 ; à 1 l'opération est sans effet.
func (s *Store) Decrement(ctx context.Context, customerID string, productID int64) ([]models.CartItem, error) {
	return s.mutate(ctx, customerID, productID, func(item *models.CartItem) error {
		if item.Quantity > 1 {
			item.Quantity = item.ClampQuantity(item.Quantity - 1)
		}
		return nil
	})
}

// Count est la somme des quantités (valeur affichée dans le badge).
func (s *Store) Count(ctx context.Context, customerID string) (int, error) {
	items, err := s.Get(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return CountItems(items), nil
}

func CountItems(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// Subscribe diffuse l'état du panier à chaque changement, jusqu'à l'annulation de ctx.
func (s *Store) Subscribe(ctx context.Context, customerID string) (<-chan Event, error) {
	raw, err := s.kv.Subscribe(ctx, eventsChannel(customerID))
	if err != nil {
		return nil, fmt.Errorf("abonnement panier: %w", err)
	}

	out := make(chan Event, 1)
	go func() {
		defer close(out)
		for payload := range raw {
			if payload != EventUpdated && payload != EventCleared {
				continue
			}
			items, err := s.Get(ctx, customerID)
			if err != nil {
				log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Relecture du panier impossible")
				continue
			}
			select {
			case out <- NewEvent(items):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func NewEvent(items []models.CartItem) Event {
	return Event{
		Type:  "cart_updated",
		Items: items,
		Count: CountItems(items),
		Total: models.CartTotal(items),
	}
}

func (s *Store) mutate(ctx context.Context, customerID string, productID int64, fn func(*models.CartItem) error) ([]models.CartItem, error) {
	items, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(items, productID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	before := items[idx]
	if err := fn(&items[idx]); err != nil {
		return items, err
	}
	if items[idx] == before {
		return items, nil
	}
	if err := s.Save(ctx, customerID, items); err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation("quantity")
	return items, nil
}

func indexOf(items []models.CartItem, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

