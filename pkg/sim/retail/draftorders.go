package retail

import (
	"fmt"
	"strconv"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var draftStatuses = []string{"open", "invoice_sent", "completed"}

// Draft orders tax at a flat rate unless the draft is tax exempt.
const (
	taxRate  = 0.10
	taxTitle = "Sales Tax"
)

var draftOrderCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "customer_id", Type: validate.String, NonEmpty: true},
	{Name: "email", Type: validate.String, Default: ""},
	{Name: "note", Type: validate.String, Default: ""},
	{Name: "tags", Type: validate.String, Default: ""},
	{Name: "currency", Type: validate.String, Default: "USD", MaxLen: 3},
	{Name: "tax_exempt", Type: validate.Bool, Default: false},
}}

// CreateDraftOrder creates a draft order with computed pricing. Args:
// "line_items" (required non-empty list; each item names an existing
// product via product_id or is a custom item with title and price, with
// optional quantity and applied_discount), "customer_id" (optional, must
// exist), "email", "note", "tags", "currency", "tax_exempt",
// "shipping_line" (object with title and price), "applied_discount"
// (order-level, value and value_type "percentage" or "fixed_amount").
//
// Pricing runs in a fixed order: line subtotals, line discounts (each
// clamped at its line subtotal), the order discount (clamped at what
// remains), then tax on the discounted base, then shipping. All money
// stays in decimal strings; arithmetic happens in cents.
func (s *Sim) CreateDraftOrder(args map[string]any) (store.Record, error) {
	if args == nil {
		args = map[string]any{}
	}
	scalars := map[string]any{}
	for k, v := range args {
		switch k {
		case "line_items", "shipping_line", "applied_discount":
		default:
			scalars[k] = v
		}
	}
	norm, err := draftOrderCreateSchema.Check(scalars)
	if err != nil {
		return nil, err
	}

	lineItems, subtotalCents, lineDiscountCents, err := s.resolveDraftLineItems(args["line_items"])
	if err != nil {
		return nil, err
	}

	email := norm["email"].(string)
	customerID, hasCustomer := norm["customer_id"].(string)
	if hasCustomer {
		customer, ok := s.store.Get("customers", customerID)
		if !ok {
			return nil, &apierr.NotFoundError{Resource: "customer", ID: customerID}
		}
		if e, _ := customer["email"].(string); e != "" {
			email = e
		}
	}

	afterLineDiscounts := subtotalCents - lineDiscountCents

	var orderDiscount map[string]any
	orderDiscountCents := int64(0)
	if v, present := args["applied_discount"]; present && v != nil {
		orderDiscount, orderDiscountCents, err = checkDiscount("applied_discount", v, afterLineDiscounts)
		if err != nil {
			return nil, err
		}
	}
	discountedCents := afterLineDiscounts - orderDiscountCents

	var shippingLine map[string]any
	shippingCents := int64(0)
	if v, present := args["shipping_line"]; present && v != nil {
		shippingLine, err = checkShippingLine(v)
		if err != nil {
			return nil, err
		}
		shippingCents = moneyToCents(shippingLine["price"].(string))
	}

	taxCents := int64(0)
	taxLines := []any{}
	if !norm["tax_exempt"].(bool) {
		// Half-up rounding on the discounted base.
		taxCents = (discountedCents + 5) / 10
		if taxCents > 0 {
			taxLines = append(taxLines, map[string]any{
				"price": centsToMoney(taxCents),
				"rate":  taxRate,
				"title": taxTitle,
			})
		}
	}

	draftID := s.nextID("draft_orders")
	now := s.timestamp()
	rec := store.Record{
		"id":              draftID,
		"name":            "#D" + draftID,
		"status":          "open",
		"currency":        norm["currency"],
		"email":           email,
		"note":            norm["note"],
		"tags":            norm["tags"],
		"tax_exempt":      norm["tax_exempt"],
		"line_items":      lineItems,
		"subtotal_price":  centsToMoney(subtotalCents),
		"total_tax":       centsToMoney(taxCents),
		"total_price":     centsToMoney(discountedCents + taxCents + shippingCents),
		"tax_lines":       taxLines,
		"invoice_sent_at": "",
		"order_id":        "",
		"created_at":      now,
		"updated_at":      now,
	}
	if hasCustomer {
		rec["customer_id"] = customerID
	}
	if shippingLine != nil {
		rec["shipping_line"] = shippingLine
	}
	if orderDiscount != nil {
		rec["applied_discount"] = orderDiscount
	}

	s.store.Put("draft_orders", draftID, rec)
	s.log.Info("draft order created", "id", draftID, "total", rec["total_price"])
	return rec, nil
}

// GetDraftOrder returns one draft order. Naming fields narrows the
// result to those top-level fields.
func (s *Sim) GetDraftOrder(draftID string, fields ...string) (store.Record, error) {
	rec, ok := s.store.Get("draft_orders", draftID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "draft order", ID: draftID}
	}
	if len(fields) == 0 {
		return rec, nil
	}
	out := store.Record{}
	for _, f := range fields {
		if v, present := rec[f]; present {
			out[f] = v
		}
	}
	return out, nil
}

// ListDraftOrders returns draft orders in id order, optionally narrowed
// to one status.
func (s *Sim) ListDraftOrders(status string) ([]store.Record, error) {
	if status != "" && !containsDraftStatus(status) {
		return nil, &apierr.ValueError{Param: "status", Message: "has unsupported value " + status}
	}
	var out []store.Record
	for _, r := range s.store.List("draft_orders") {
		if status != "" && r["status"] != status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// UpdateDraftOrder merges attrs into an existing draft order and bumps
// its modification timestamp. The id and computed names cannot change; a
// customer_id must name an existing customer. Stored totals are not
// recomputed — a draft keeps the prices it was created with.
func (s *Sim) UpdateDraftOrder(draftID string, attrs map[string]any) (store.Record, error) {
	rec, ok := s.store.Get("draft_orders", draftID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "draft order", ID: draftID}
	}
	for k := range attrs {
		if k == "id" || k == "name" {
			return nil, &apierr.ValueError{Param: k, Message: "cannot be modified"}
		}
	}
	if v, present := attrs["status"]; present {
		status, ok := v.(string)
		if !ok || !containsDraftStatus(status) {
			return nil, &apierr.ValueError{Param: "status", Message: fmt.Sprintf("has unsupported value %v", v)}
		}
	}
	if v, present := attrs["customer_id"]; present {
		customerID, ok := v.(string)
		if !ok || customerID == "" {
			return nil, &apierr.ValueError{Param: "customer_id", Message: "must be a non-empty string"}
		}
		if _, ok := s.store.Get("customers", customerID); !ok {
			return nil, &apierr.NotFoundError{Resource: "customer", ID: customerID}
		}
	}

	for k, v := range attrs {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("draft_orders", draftID, rec)
	return rec, nil
}

// resolveDraftLineItems validates the line item list and returns the
// processed items with the summed subtotal and line discounts, in cents.
func (s *Sim) resolveDraftLineItems(v any) ([]any, int64, int64, error) {
	if v == nil {
		return nil, 0, 0, &apierr.ValueError{Param: "line_items", Message: "is required"}
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, 0, 0, &apierr.TypeError{Param: "line_items", Expected: "list of objects", Received: v}
	}
	if len(raw) == 0 {
		return nil, 0, 0, &apierr.ValueError{Param: "line_items", Message: "must not be empty"}
	}

	out := make([]any, 0, len(raw))
	subtotalCents := int64(0)
	discountCents := int64(0)
	for i, e := range raw {
		item, ok := e.(map[string]any)
		if !ok {
			return nil, 0, 0, &apierr.TypeError{Param: fmt.Sprintf("line_items[%d]", i), Expected: "object", Received: e}
		}

		line := map[string]any{"id": strconv.Itoa(i + 1)}
		if productID, present := item["product_id"].(string); present && productID != "" {
			product, ok := s.store.Get("products", productID)
			if !ok {
				return nil, 0, 0, &apierr.NotFoundError{Resource: "product", ID: productID}
			}
			line["product_id"] = productID
			line["title"] = product["title"]
			line["price"] = product["price"]
		} else {
			// A custom item carries its own title and price.
			title, _ := item["title"].(string)
			price, _ := item["price"].(string)
			if title == "" || price == "" {
				return nil, 0, 0, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d]", i), Message: "requires product_id, or title and price"}
			}
			if !pricePattern.MatchString(price) {
				return nil, 0, 0, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d].price", i), Message: "must be a decimal string like 19.99, got " + price}
			}
			line["title"] = title
			line["price"] = price
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
				return nil, 0, 0, &apierr.ValueError{Param: fmt.Sprintf("line_items[%d].quantity", i), Message: fmt.Sprintf("must be a positive integer, got %v", q)}
			}
			quantity = qf
		}
		line["quantity"] = quantity

		lineCents := moneyToCents(line["price"].(string)) * int64(quantity)
		subtotalCents += lineCents

		if d, present := item["applied_discount"]; present && d != nil {
			discount, amount, err := checkDiscount(fmt.Sprintf("line_items[%d].applied_discount", i), d, lineCents)
			if err != nil {
				return nil, 0, 0, err
			}
			line["applied_discount"] = discount
			discountCents += amount
		}

		out = append(out, line)
	}
	return out, subtotalCents, discountCents, nil
}

// checkDiscount validates an applied_discount object and computes the
// discount amount against base, clamping so a discount never exceeds
// what it applies to. The returned object carries the computed "amount".
func checkDiscount(param string, v any, baseCents int64) (map[string]any, int64, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, 0, &apierr.TypeError{Param: param, Expected: "object", Received: v}
	}
	value, ok := m["value"].(string)
	if !ok || value == "" {
		return nil, 0, &apierr.ValueError{Param: param + ".value", Message: "is required"}
	}
	valueType, _ := m["value_type"].(string)

	var amountCents int64
	switch valueType {
	case "percentage":
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil || pct < 0 {
			return nil, 0, &apierr.ValueError{Param: param + ".value", Message: "must be a non-negative number, got " + value}
		}
		amountCents = int64(float64(baseCents)*pct/100 + 0.5)
	case "fixed_amount":
		if !pricePattern.MatchString(value) {
			return nil, 0, &apierr.ValueError{Param: param + ".value", Message: "must be a decimal string like 19.99, got " + value}
		}
		amountCents = moneyToCents(value)
	default:
		return nil, 0, &apierr.ValueError{Param: param + ".value_type", Message: fmt.Sprintf("must be percentage or fixed_amount, got %v", m["value_type"])}
	}
	if amountCents > baseCents {
		amountCents = baseCents
	}

	out := map[string]any{"value": value, "value_type": valueType, "amount": centsToMoney(amountCents)}
	if title, ok := m["title"].(string); ok {
		out["title"] = title
	}
	if desc, ok := m["description"].(string); ok {
		out["description"] = desc
	}
	return out, amountCents, nil
}

func checkShippingLine(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &apierr.TypeError{Param: "shipping_line", Expected: "object", Received: v}
	}
	title, _ := m["title"].(string)
	price, _ := m["price"].(string)
	if title == "" || price == "" {
		return nil, &apierr.ValueError{Param: "shipping_line", Message: "requires title and price"}
	}
	if !pricePattern.MatchString(price) {
		return nil, &apierr.ValueError{Param: "shipping_line.price", Message: "must be a decimal string like 19.99, got " + price}
	}
	return map[string]any{"title": title, "price": price}, nil
}

func containsDraftStatus(v string) bool {
	for _, e := range draftStatuses {
		if e == v {
			return true
		}
	}
	return false
}
