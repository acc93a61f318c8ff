// Package search keeps a Meilisearch index of formatted addresses in sync
// with the canonical store, powering the address search endpoint. The
// index is an auxiliary surface: the registry stays correct without it.
package search

import (
	"fmt"

	ms "github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/address-registry/app/models"
)

const indexName = "addresses"

// Document is the flattened projection of a canonical address that lives
// in the search index.
type Document struct {
	ID               string   `json:"id"`
	FormattedAddress string   `json:"formatted_address"`
	Aliases          []string `json:"aliases"`
	Geohash          string   `json:"geohash"`
	Confidence       float64  `json:"confidence"`
}

// AddressIndex wraps the Meilisearch client.
type AddressIndex struct {
	cli    ms.ServiceManager
	logger *zap.Logger
}

// NewAddressIndex connects to Meilisearch.
func NewAddressIndex(host, apiKey string, logger *zap.Logger) *AddressIndex {
	return &AddressIndex{
		cli:    ms.New(host, ms.WithAPIKey(apiKey)),
		logger: logger,
	}
}

func toDocument(addr *models.CanonicalAddress) Document {
	aliases := make([]string, 0, len(addr.Aliases))
	for _, a := range addr.Aliases {
		aliases = append(aliases, a.RawText)
	}
	return Document{
		ID:               addr.ID,
		FormattedAddress: addr.FormattedAddress,
		Aliases:          aliases,
		Geohash:          addr.Geohash,
		Confidence:       addr.Confidence,
	}
}

// Upsert writes (or rewrites) one address document. Called on create and
// after merges rewrite the primary.
func (ai *AddressIndex) Upsert(addr *models.CanonicalAddress) error {
	docs := []Document{toDocument(addr)}
	if _, err := ai.cli.Index(indexName).AddDocuments(docs, "id"); err != nil {
		return fmt.Errorf("index address %s: %w", addr.ID, err)
	}
	ai.logger.Debug("indexed address", zap.String("id", addr.ID))
	return nil
}

// Remove drops address documents by id; absorbed records leave the index
// when a merge deletes them.
func (ai *AddressIndex) Remove(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := ai.cli.Index(indexName).DeleteDocuments(ids); err != nil {
		return fmt.Errorf("deindex addresses: %w", err)
	}
	return nil
}

// Search runs a free-text query over formatted addresses and aliases.
func (ai *AddressIndex) Search(query string, limit int64) ([]Document, error) {
	resp, err := ai.cli.Index(indexName).Search(query, &ms.SearchRequest{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search addresses: %w", err)
	}

	out := make([]Document, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		doc := Document{}
		if v, ok := raw["id"].(string); ok {
			doc.ID = v
		}
		if v, ok := raw["formatted_address"].(string); ok {
			doc.FormattedAddress = v
		}
		if v, ok := raw["geohash"].(string); ok {
			doc.Geohash = v
		}
		if v, ok := raw["confidence"].(float64); ok {
			doc.Confidence = v
		}
		if vs, ok := raw["aliases"].([]interface{}); ok {
			for _, v := range vs {
				if s, ok := v.(string); ok {
					doc.Aliases = append(doc.Aliases, s)
				}
			}
		}
		out = append(out, doc)
	}
	return out, nil
}
