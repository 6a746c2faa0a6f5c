package retail

import (
	"fmt"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var financialStatuses = []string{"pending", "authorized", "paid", "partially_refunded", "refunded", "voided"}

var orderCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "customer_id", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "financial_status", Type: validate.String, Default: "pending", Enum: financialStatuses},
	{Name: "currency", Type: validate.String, Default: "USD", MaxLen: 3},
}}

// CreateOrder creates an order for a customer. Args: "customer_id"
// (required, must exist), "line_items" (required non-empty list of
// objects with product_id, quantity, and optionally price — omitted
// prices come from the product), "financial_status", "currency". The
// order gets the next sequential order number, and the customer's
// aggregates are recomputed.
func (s *Sim) CreateOrder(args map[string]any) (store.Record, error) {
	if args == nil {
		args = map[string]any{}
	}
	lineItems, err := s.resolveLineItems(args["line_items"])
	if err != nil {
		return nil, err
	}

	scalars := map[string]any{}
	for k, v := range args {
		if k != "line_items" {
			scalars[k] = v
		}
	}
	norm, err := orderCreateSchema.Check(scalars)
	if err != nil {
		return nil, err
	}

	customerID := norm["customer_id"].(string)
	if _, ok := s.store.Get("customers", customerID); !ok {
		return nil, &apierr.NotFoundError{Resource: "customer", ID: customerID}
	}

	cents := int64(0)
	for _, item := range lineItems {
		li := item.(map[string]any)
		cents += moneyToCents(li["price"].(string)) * int64(li["quantity"].(float64))
	}

	orderID := s.nextID("orders")
	number := s.orderNum.NextInt()
	now := s.timestamp()
	rec := store.Record{
		"id":               orderID,
		"order_number":     float64(number),
		"name":             fmt.Sprintf("#%d", number),
		"customer_id":      customerID,
		"line_items":       lineItems,
		"total_price":      centsToMoney(cents),
		"financial_status": norm["financial_status"],
		"currency":         norm["currency"],
		"token":            id.Alphanumeric(32),
		"checkout_token":   id.Prefixed("chk", 16),
		"cancelled_at":     "",
		"closed_at":        "",
		"created_at":       now,
		"updated_at":       now,
	}
	s.store.Put("orders", orderID, rec)

	if err := s.recomputeAggregates(customerID); err != nil {
		return nil, err
	}
	s.log.Info("order created", "id", orderID, "number", number, "customer", customerID)
	return rec, nil
}

// GetOrder returns one order.
func (s *Sim) GetOrder(orderID string) (store.Record, error) {
	rec, ok := s.store.Get("orders", orderID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "order", ID: orderID}
	}
	return rec, nil
}

// ListOrders returns orders in id order, optionally narrowed to one
// financial status.
func (s *Sim) ListOrders(financialStatus string) ([]store.Record, error) {
	if financialStatus != "" && !containsStatus(financialStatus) {
		return nil, &apierr.ValueError{Param: "financial_status", Message: "has unsupported value " + financialStatus}
	}
	var out []store.Record
	for _, r := range s.store.List("orders") {
		if financialStatus != "" && r["financial_status"] != financialStatus {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// CancelOrder cancels an open order. Cancelled orders drop out of the
// customer's aggregates. Cancelling twice is a value violation.
func (s *Sim) CancelOrder(orderID string) (store.Record, error) {
	rec, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if cancelled, _ := rec["cancelled_at"].(string); cancelled != "" {
		return nil, &apierr.ValueError{Param: "order_id", Message: "names an order that is already cancelled"}
	}

	now := s.timestamp()
	rec["cancelled_at"] = now
	rec["updated_at"] = now
	rec["financial_status"] = "voided"
	s.store.Put("orders", orderID, rec)

	if err := s.recomputeAggregates(rec["customer_id"].(string)); err != nil {
		return nil, err
	}
	s.log.Info("order cancelled", "id", orderID)
	return rec, nil
}

// CloseOrder archives a fulfilled order.
func (s *Sim) CloseOrder(orderID string) (store.Record, error) {
	rec, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	now := s.timestamp()
	rec["closed_at"] = now
	rec["updated_at"] = now
	s.store.Put("orders", orderID, rec)
	return rec, nil
}

// ReopenOrder clears a previous close.
func (s *Sim) ReopenOrder(orderID string) (store.Record, error) {
	rec, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if closed, _ := rec["closed_at"].(string); closed == "" {
		return nil, &apierr.ValueError{Param: "order_id", Message: "names an order that is not closed"}
	}
	rec["closed_at"] = ""
	rec["updated_at"] = s.timestamp()
	s.store.Put("orders", orderID, rec)
	return rec, nil
}

// resolveLineItems validates the line item list and fills missing prices
// from the referenced products.
func (s *Sim) resolveLineItems(v any) ([]any, error) {
	if v == nil {
		return nil, &apierr.ValueError{Param: "line_items", Message: "is required"}
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, &apierr.TypeError{Param: "line_items", Expected: "list of objects", Received: v}
	}
	if len(raw) == 0 {
		return nil, &apierr.ValueError{Param: "line_items", Message: "must not be empty"}
	}

	out := make([]any, 0, len(raw))
	for i, e := range raw {
		item, ok := e.(map[string]any)
		if !ok {
			return nil, &apierr.TypeError{Param: fmt.Sprintf("line_items[%d]", i), Expected: "object", Received: e}
		}
		productID, ok := item["product_id"].(string)
		if !ok || productID == "" {
			return nil, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d].product_id", i), Message: "is required"}
		}
		product, ok := s.store.Get("products", productID)
		if !ok {
			return nil, &apierr.NotFoundError{Resource: "product", ID: productID}
		}

		quantity := float64(1)
		if q, present := item["quantity"]; present {
			qf, ok := q.(float64)
			if !ok {
				if qi, isInt := q.(int); isInt {
					qf, ok = float64(qi), true
				}
			}
			if !ok || qf < 1 || qf != float64(int(qf)) {
				return nil, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d].quantity", i), Message: fmt.Sprintf("must be a positive integer, got %v", q)}
			}
			quantity = qf
		}

		price, _ := item["price"].(string)
		if price == "" {
			price, _ = product["price"].(string)
		}
		if !pricePattern.MatchString(price) {
			return nil, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d].price", i), Message: "must be a decimal string like 19.99, got " + price}
		}

		out = append(out, map[string]any{
			"product_id": productID,
			"title":      product["title"],
			"quantity":   quantity,
			"price":      price,
		})
	}
	return out, nil
}

func containsStatus(v string) bool {
	for _, e := range financialStatuses {
		if e == v {
			return true
		}
	}
	return false
}
