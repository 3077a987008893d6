package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/models"
)

// ErrItemUnavailable : une ligne en rupture de stock ne peut pas être cochée.
var ErrItemUnavailable = models.NewUserError("This item is out of stock.")

// Selection mémorise les lignes cochées pour le checkout. L'ensemble est
// toujours ramené à un sous-ensemble des ids disponibles du panier.
type Selection struct {
	kv  cache.Store
	ttl time.Duration
}

func NewSelection(kv cache.Store, ttl time.Duration) *Selection {
	return &Selection{kv: kv, ttl: ttl}
}

func selectionKey(customerID string) string { return "cart_selection:" + customerID }

// Get renvoie les ids sélectionnés, filtrés sur items.
func (s *Selection) Get(ctx context.Context, customerID string, items []models.CartItem) ([]int64, error) {
	var ids []int64
	err := cache.GetJSON(ctx, s.kv, selectionKey(customerID), &ids)
	switch {
	case err == nil, errors.Is(err, cache.ErrNotFound):
	case errors.Is(err, cache.ErrCorrupt):
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Sélection illisible, réinitialisée")
		ids = nil
	default:
		return nil, fmt.Errorf("lecture sélection: %w", err)
	}
	return reconcile(ids, items), nil
}

// SelectAll coche toutes les lignes (état initial de la page panier).
func (s *Selection) SelectAll(ctx context.Context, customerID string, items []models.CartItem) ([]int64, error) {
	return s.save(ctx, customerID, Selectable(items))
}

// Toggle coche ou décoche une ligne présente dans le panier.
func (s *Selection) Toggle(ctx context.Context, customerID string, items []models.CartItem, productID int64) ([]int64, error) {
	idx := indexOf(items, productID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	current, err := s.Get(ctx, customerID, items)
	if err != nil {
		return nil, err
	}
	next := make([]int64, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == productID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		if !items[idx].Available() {
			return nil, ErrItemUnavailable
		}
		next = append(next, productID)
	}
	return s.save(ctx, customerID, next)
}

// ToggleAll : tout décocher si tout est coché, sinon tout cocher.
func (s *Selection) ToggleAll(ctx context.Context, customerID string, items []models.CartItem) ([]int64, error) {
	current, err := s.Get(ctx, customerID, items)
	if err != nil {
		return nil, err
	}
	selectable := Selectable(items)
	if len(current) == len(selectable) {
		return s.save(ctx, customerID, []int64{})
	}
	return s.save(ctx, customerID, selectable)
}

// Clear vide la sélection (après une commande réussie).
func (s *Selection) Clear(ctx context.Context, customerID string) error {
	return s.kv.Delete(ctx, selectionKey(customerID))
}

func (s *Selection) save(ctx context.Context, customerID string, ids []int64) ([]int64, error) {
	if err := cache.SetJSON(ctx, s.kv, selectionKey(customerID), ids, s.ttl); err != nil {
		return nil, fmt.Errorf("écriture sélection: %w", err)
	}
	return ids, nil
}

// Selected renvoie les lignes dont l'id est sélectionné, dans l'ordre du panier.
func Selected(items []models.CartItem, ids []int64) []models.CartItem {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]models.CartItem, 0, len(ids))
	for _, item := range items {
		if _, ok := set[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func reconcile(ids []int64, items []models.CartItem) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		if idx := indexOf(items, id); idx < 0 || !items[idx].Available() {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Selectable renvoie les ids des lignes qui peuvent être commandées.
func Selectable(items []models.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Available() {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func allIDs(items []models.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}
