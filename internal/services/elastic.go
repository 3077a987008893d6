package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	log "github.com/sirupsen/logrus"

	"seamerkado_buyer/internal/models"
)

const productsIndex = "seamerkado_products"

var ErrSearchUnavailable = errors.New("client Elasticsearch non initialisé")

// SearchIndex indexe le catalogue pour la recherche du tableau de bord.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client) *SearchIndex {
	return &SearchIndex{client: client, index: productsIndex}
}

type indexedProduct struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Price      float64 `json:"price"`
	SalesCount int     `json:"sales_count"`
	SellerID   int64   `json:"seller_id,omitempty"`
}

// EnsureIndex crée l'index s'il n'existe pas. name.raw sert aux recherches par sous-chaîne.
func (s *SearchIndex) EnsureIndex(ctx context.Context) error {
	if s == nil || s.client == nil {
		return ErrSearchUnavailable
	}
	res, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("vérification index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{"mappings":{"properties":{
		"id":{"type":"long"},
		"name":{"type":"text","fields":{"raw":{"type":"keyword"}}},
		"category":{"type":"keyword"},
		"price":{"type":"double"},
		"sales_count":{"type":"integer"},
		"seller_id":{"type":"long"}}}}`
	res, err = esapi.IndicesCreateRequest{Index: s.index, Body: strings.NewReader(mapping)}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("création index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création index: %s", res.String())
	}
	log.WithField("index", s.index).Info("✅ Index Elasticsearch créé")
	return nil
}

// IndexProducts envoie le catalogue en un seul appel bulk.
func (s *SearchIndex) IndexProducts(ctx context.Context, products []models.Product) error {
	if s == nil || s.client == nil {
		return ErrSearchUnavailable
	}
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": strconv.FormatInt(p.ID, 10)}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		doc := indexedProduct{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Price:      p.EffectivePrice(),
			SalesCount: p.SalesCount.Int(),
			SellerID:   p.SellerID,
		}
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk Elastic: %s", res.String())
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Errors {
		log.WithField("count", len(products)).Warn("⚠️ Certains produits n'ont pas été indexés")
	}
	return nil
}

// Search renvoie les ids des produits dont le nom contient term (casse ignorée).
func (s *SearchIndex) Search(ctx context.Context, term string) ([]int64, error) {
	if s == nil || s.client == nil {
		return nil, ErrSearchUnavailable
	}

	q := map[string]any{
		"size":    1000,
		"_source": []string{"id"},
		"query": map[string]any{
			"wildcard": map[string]any{
				"name.raw": map[string]any{
					"value":            "*" + escapeWildcard(term) + "*",
					"case_insensitive": true,
				},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{s.index}, Body: &buf}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("recherche Elastic %d: %s", res.StatusCode, raw)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source indexedProduct `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}
	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}

func escapeWildcard(term string) string {
	return strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`).Replace(strings.TrimSpace(term))
}

// ProductLister fournit le catalogue à indexer.
type ProductLister interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// DefaultReindexInterval remplace un intervalle nul ou négatif.
const DefaultReindexInterval = 5 * time.Minute

// RunIndexer réindexe le catalogue à intervalle régulier jusqu'à l'annulation de ctx.
func (s *SearchIndex) RunIndexer(ctx context.Context, src ProductLister, every time.Duration) {
	if every <= 0 {
		every = DefaultReindexInterval
	}
	reindex := func() {
		products, err := src.Products(ctx)
		if err != nil {
			log.WithError(err).Warn("⚠️ Catalogue indisponible, réindexation reportée")
			return
		}
		if err := s.IndexProducts(ctx, products); err != nil {
			log.WithError(err).Warn("⚠️ Réindexation Elasticsearch échouée")
			return
		}
		log.WithField("count", len(products)).Debug("🔎 Catalogue réindexé")
	}

	if err := s.EnsureIndex(ctx); err != nil {
		log.WithError(err).Warn("⚠️ Index Elasticsearch non prêt")
	}
	reindex()

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reindex()
		}
	}
}
