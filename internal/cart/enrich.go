package cart

import (
	"context"
	"errors"
	"slices"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/models"
)

// ErrCatalogUnavailable : le panier est renvoyé tel que stocké, sans prix ni stock frais.
var ErrCatalogUnavailable = errors.New("cart: catalogue indisponible")

// DetailsFetcher récupère les fiches produit à jour.
type DetailsFetcher interface {
	ProductDetails(ctx context.Context, ids []int64) ([]models.Product, error)
}

// Refresh enrichit le panier avec prix et stock du catalogue, puis borne les quantités.
// En cas d'échec du catalogue, renvoie le panier stocké et ErrCatalogUnavailable.
func (s *Store) Refresh(ctx context.Context, customerID string, catalog DetailsFetcher) ([]models.CartItem, error) {
	items, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	products, err := catalog.ProductDetails(ctx, allIDs(items))
	if err != nil {
		log.WithError(err).WithField("customer_id", customerID).Error("❌ Échec récupération détails produits")
		return items, errors.Join(ErrCatalogUnavailable, err)
	}

	updated := Merge(items, products)
	if !slices.Equal(updated, items) {
		if err := s.Save(ctx, customerID, updated); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Merge applique les données catalogue aux lignes connues ; les lignes sans fiche restent inchangées.
func Merge(items []models.CartItem, products []models.Product) []models.CartItem {
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]models.CartItem, len(items))
	for i, item := range items {
		p, ok := byID[item.ID]
		if !ok {
			out[i] = item
			continue
		}
		item.Price = p.Price.Float()
		item.Stock = p.StockLevel()
		item.StockKnown = true
		item.Category = p.Category
		item.Unit = p.Unit
		if item.Unit == "" {
			item.Unit = "kg"
		}
		item.SellerID = p.SellerID
		q := item.Quantity
		if q < 1 {
			q = 1
		}
		item.Quantity = item.ClampQuantity(q)
		out[i] = item
	}
	return out
}
