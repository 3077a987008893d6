// Package catalog prépare les vues produits et boutiques : recherche,
// meilleures ventes, étoiles et normalisation des réponses distantes.
package catalog

import (
	"slices"
	"strings"

	"seamerkado_buyer/internal/models"
)

// BestSellerCount est le nombre de produits mis en avant sans recherche.
const BestSellerCount = 3

const (
	HeadingSearch     = "Search Results"
	HeadingBestSeller = "Best Seller"
)

// Filter garde les produits dont le nom contient term (casse ignorée).
// Sans terme, on renvoie les meilleures ventes. Les espaces comptent : "  "
// est un terme comme un autre.
func Filter(products []models.Product, term string) []models.Product {
	if term == "" {
		return BestSellers(products, BestSellerCount)
	}
	needle := strings.ToLower(term)
	out := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// BestSellers trie par ventes décroissantes (ordre d'origine conservé à égalité) et garde les n premiers.
func BestSellers(products []models.Product, n int) []models.Product {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b models.Product) int {
		switch {
		case a.SalesCount > b.SalesCount:
			return -1
		case a.SalesCount < b.SalesCount:
			return 1
		}
		return 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Product{}
	}
	return sorted
}

func Heading(term string) string {
	if term != "" {
		return HeadingSearch
	}
	return HeadingBestSeller
}
