// Package addresses gère le carnet d'adresses de livraison enregistré par client.
package addresses

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/cache"
	"seamerkado_buyer/internal/models"
)

var (
	ErrIncomplete = models.NewUserError("Please fill in name, address, and contact to save.")
	ErrNotFound   = errors.New("addresses: adresse introuvable")
)

// Book lit et écrit la liste sous "saved_addresses_<client>".
type Book struct {
	kv  cache.Store
	now func() time.Time
}

func NewBook(kv cache.Store) *Book {
	return &Book{kv: kv, now: time.Now}
}

func bookKey(customerID string) string { return "saved_addresses_" + customerID }

// List renvoie les adresses enregistrées (vide si absentes ou illisibles).
func (b *Book) List(ctx context.Context, customerID string) ([]models.SavedAddress, error) {
	var list []models.SavedAddress
	err := cache.GetJSON(ctx, b.kv, bookKey(customerID), &list)
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrNotFound):
	case errors.Is(err, cache.ErrCorrupt):
		log.WithError(err).WithField("customer_id", customerID).Warn("⚠️ Carnet d'adresses illisible")
	default:
		return nil, fmt.Errorf("lecture adresses: %w", err)
	}
	if list == nil {
		list = []models.SavedAddress{}
	}
	return list, nil
}

func (b *Book) Get(ctx context.Context, customerID, id string) (models.SavedAddress, error) {
	list, err := b.List(ctx, customerID)
	if err != nil {
		return models.SavedAddress{}, err
	}
	for _, a := range list {
		if a.ID == id {
			return a, nil
		}
	}
	return models.SavedAddress{}, ErrNotFound
}

// Save enregistre nom, adresse et contact ; l'id est un horodatage en millisecondes unique dans le carnet.
func (b *Book) Save(ctx context.Context, customerID string, info models.DeliveryInfo) (models.SavedAddress, []models.SavedAddress, error) {
	if !info.Complete() {
		return models.SavedAddress{}, nil, ErrIncomplete
	}
	list, err := b.List(ctx, customerID)
	if err != nil {
		return models.SavedAddress{}, nil, err
	}

	now := b.now()
	addr := models.SavedAddress{
		ID:        nextID(list, now),
		Name:      strings.TrimSpace(info.Name),
		Address:   strings.TrimSpace(info.Address),
		Contact:   strings.TrimSpace(info.Contact),
		CreatedAt: now.UTC(),
	}
	list = append(list, addr)
	if err := cache.SetJSON(ctx, b.kv, bookKey(customerID), list, 0); err != nil {
		return models.SavedAddress{}, nil, fmt.Errorf("écriture adresses: %w", err)
	}
	log.WithField("customer_id", customerID).Infof("📦 Adresse %s enregistrée", addr.ID)
	return addr, list, nil
}

// Delete retire l'adresse id ; ErrNotFound si elle n'existe pas.
func (b *Book) Delete(ctx context.Context, customerID, id string) ([]models.SavedAddress, error) {
	list, err := b.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	kept := make([]models.SavedAddress, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(list) {
		return list, ErrNotFound
	}
	if err := cache.SetJSON(ctx, b.kv, bookKey(customerID), kept, 0); err != nil {
		return nil, fmt.Errorf("écriture adresses: %w", err)
	}
	return kept, nil
}

func nextID(list []models.SavedAddress, now time.Time) string {
	taken := make(map[string]struct{}, len(list))
	for _, a := range list {
		taken[a.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		ms++
	}
}
