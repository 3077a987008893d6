package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/models"
)

var ErrShopNotFound = errors.New("catalog: boutique introuvable")

// ShopSource est le service boutiques distant.
type ShopSource interface {
	Shops(ctx context.Context) ([]models.Shop, error)
	ShopProducts(ctx context.Context, sellerID int64) ([]models.Product, error)
}

// NormalizeShops remplace les listes de produits absentes par des listes vides.
func NormalizeShops(shops []models.Shop) []models.Shop {
	out := make([]models.Shop, 0, len(shops))
	for _, s := range shops {
		if s.Products == nil {
			s.Products = []models.Product{}
		}
		out = append(out, s)
	}
	return out
}

// ShopProducts interroge l'endpoint dédié. S'il répond en erreur HTTP, on
// retombe sur la liste complète des boutiques filtrée par vendeur.
func ShopProducts(ctx context.Context, src ShopSource, sellerID int64) ([]models.Product, error) {
	products, err := src.ShopProducts(ctx, sellerID)
	if err == nil {
		if products == nil {
			products = []models.Product{}
		}
		return products, nil
	}
	if models.StatusCode(err) == 0 {
		return nil, err
	}

	log.WithError(err).WithField("seller_id", sellerID).Info("ℹ️ Endpoint produits boutique indisponible, repli sur /api/shop")
	shops, err := src.Shops(ctx)
	if err != nil {
		return nil, fmt.Errorf("repli boutiques: %w", err)
	}
	for _, s := range shops {
		if s.SellerID == sellerID {
			if s.Products == nil {
				return []models.Product{}, nil
			}
			return s.Products, nil
		}
	}
	return []models.Product{}, nil
}

// FindShop renvoie la boutique d'un vendeur pour afficher son nom.
func FindShop(shops []models.Shop, sellerID int64) (models.Shop, error) {
	for _, s := range shops {
		if s.SellerID == sellerID {
			return s, nil
		}
	}
	return models.Shop{}, fmt.Errorf("%w: %s", ErrShopNotFound, strconv.FormatInt(sellerID, 10))
}
