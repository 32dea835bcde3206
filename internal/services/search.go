package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"storefront_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const decrementStockScript = "if (ctx._source.stock != null) { ctx._source.stock -= params.qty }"

// SearchIndex keeps the stock field of indexed products in step with
// committed orders.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	return &SearchIndex{client: client, index: index}
}

func (s *SearchIndex) Name() string { return "search index" }

func (s *SearchIndex) OrderPlaced(ctx context.Context, placed *models.PlacedOrder) error {
	var errs []error
	for _, item := range placed.Order.Items {
		if err := s.decrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SearchIndex) decrementStock(ctx context.Context, productID string, qty int) error {
	body, err := json.Marshal(map[string]any{
		"script": map[string]any{
			"source": decrementStockScript,
			"lang":   "painless",
			"params": map[string]any{"qty": qty},
		},
	})
	if err != nil {
		return err
	}

	retries := 3
	req := esapi.UpdateRequest{
		Index:           s.index,
		DocumentID:      productID,
		Body:            bytes.NewReader(body),
		RetryOnConflict: &retries,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("elastic update %s: %w", productID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		log.Printf("⚠️ Product %s is not indexed, stock not synced", productID)
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("elastic update %s: %s", productID, res.String())
	}
	return nil
}
