package checkout

import (
	"fmt"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/payments"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Purchase is the checked, processor-priced content of one paid session.
type Purchase struct {
	PaymentID string
	Total     decimal.Decimal
	Items     []models.OrderItem
}

// parseCart reads the parallel product id and quantity lists written into
// the session metadata at checkout time.
func parseCart(metadata map[string]string) ([]string, []int, error) {
	rawIDs := metadata[payments.MetadataProductIDs]
	rawQty := metadata[payments.MetadataQuantities]
	if rawIDs == "" || rawQty == "" {
		return nil, nil, fmt.Errorf("%w: missing %s or %s metadata",
			ErrMalformedLineItems, payments.MetadataProductIDs, payments.MetadataQuantities)
	}

	ids := strings.Split(rawIDs, ",")
	for i, id := range ids {
		ids[i] = strings.TrimSpace(id)
		if ids[i] == "" {
			return nil, nil, fmt.Errorf("%w: empty product id at position %d", ErrMalformedLineItems, i)
		}
	}

	parts := strings.Split(rawQty, ",")
	quantities := make([]int, len(parts))
	for i, p := range parts {
		q, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || q < 0 {
			return nil, nil, fmt.Errorf("%w: bad quantity %q at position %d", ErrMalformedLineItems, p, i)
		}
		quantities[i] = q
	}

	if len(ids) != len(quantities) {
		return nil, nil, fmt.Errorf("%w: %d product ids but %d quantities",
			ErrMalformedLineItems, len(ids), len(quantities))
	}
	return ids, quantities, nil
}

// buildItems pairs each product with its quantity and the amount the
// processor charged for the matching line. Zero-quantity lines are dropped.
func buildItems(productIDs []string, quantities []int, lines []payments.LineItem) ([]models.OrderItem, error) {
	if len(productIDs) != len(quantities) {
		return nil, fmt.Errorf("%w: %d product ids but %d quantities",
			ErrMalformedLineItems, len(productIDs), len(quantities))
	}
	if len(lines) != len(productIDs) {
		return nil, fmt.Errorf("%w: %d line items for %d products",
			ErrMalformedLineItems, len(lines), len(productIDs))
	}

	items := make([]models.OrderItem, 0, len(productIDs))
	for i, productID := range productIDs {
		if quantities[i] == 0 {
			continue
		}
		items = append(items, models.OrderItem{
			ProductID:       productID,
			Quantity:        quantities[i],
			PriceAtPurchase: decimal.New(lines[i].AmountTotal, -2),
		})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no purchased quantities", ErrMalformedLineItems)
	}
	return items, nil
}
