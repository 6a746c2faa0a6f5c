package retail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

func TestListProducts(t *testing.T) {
	s := New()

	all, err := s.ListProducts(nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Trail Running Shoe", all[0]["title"])

	hits, err := s.ListProducts(map[string]any{"query": "merino"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Merino Base Layer", hits[0]["title"])

	none, err := s.ListProducts(map[string]any{"query": "kayak"})
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = s.ListProducts(map[string]any{"limit": 500})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "limit", verr.Param)
}

func TestCreateProduct(t *testing.T) {
	s := New()

	rec, err := s.CreateProduct(map[string]any{"title": "Down Jacket", "price": "249.00"})
	require.NoError(t, err)
	assert.Equal(t, "4", rec["id"])
	assert.Equal(t, "", rec["vendor"])
	assert.NotEmpty(t, rec["created_at"])

	got, err := s.GetProduct("4")
	require.NoError(t, err)
	assert.Equal(t, "Down Jacket", got["title"])

	_, err = s.CreateProduct(map[string]any{"title": "Bad Price", "price": "twelve"})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Param)

	_, err = s.GetProduct("999")
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "999", nferr.ID)
}

func TestSearchCustomers(t *testing.T) {
	s := New()

	hits, err := s.SearchCustomers("NORMAN")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0]["id"])

	hits, err = s.SearchCustomers("example.com")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	none, err := s.SearchCustomers("zelda")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = s.SearchCustomers("")
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestCreateCustomer(t *testing.T) {
	s := New()

	rec, err := s.CreateCustomer(map[string]any{
		"first_name": "Sam", "last_name": "Okafor", "email": "sam.okafor@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "3", rec["id"])
	assert.Equal(t, float64(0), rec["orders_count"])
	assert.Equal(t, "0.00", rec["total_spent"])
	assert.Equal(t, "enabled", rec["state"])

	_, err = s.CreateCustomer(map[string]any{
		"first_name": "Other", "last_name": "Bob", "email": "bob.norman@example.com",
	})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Param)

	_, err = s.CreateCustomer(map[string]any{"first_name": "No", "last_name": "Email"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Param)
}

func TestCreateOrder(t *testing.T) {
	s := New()

	rec, err := s.CreateOrder(map[string]any{
		"customer_id": "2",
		"line_items": []any{
			map[string]any{"product_id": "1", "quantity": 1},
			map[string]any{"product_id": "2", "quantity": 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2", rec["id"])
	assert.Equal(t, float64(1002), rec["order_number"])
	assert.Equal(t, "#1002", rec["name"])
	assert.Equal(t, "307.00", rec["total_price"])
	assert.Equal(t, "pending", rec["financial_status"])
	assert.Equal(t, "USD", rec["currency"])

	// Omitted price falls back to the product's price.
	items := rec["line_items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "129.00", first["price"])
	assert.Equal(t, "Trail Running Shoe", first["title"])

	customer, err := s.GetCustomer("2")
	require.NoError(t, err)
	assert.Equal(t, float64(1), customer["orders_count"])
	assert.Equal(t, "307.00", customer["total_spent"])
}

func TestCreateOrderValidation(t *testing.T) {
	s := New()

	_, err := s.CreateOrder(map[string]any{"customer_id": "1"})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "line_items", verr.Param)

	_, err = s.CreateOrder(map[string]any{"customer_id": "1", "line_items": []any{}})
	require.ErrorAs(t, err, &verr)

	_, err = s.CreateOrder(map[string]any{
		"customer_id": "1",
		"line_items":  []any{map[string]any{"product_id": "999"}},
	})
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "999", nferr.ID)

	_, err = s.CreateOrder(map[string]any{
		"customer_id": "999",
		"line_items":  []any{map[string]any{"product_id": "1"}},
	})
	require.ErrorAs(t, err, &nferr)

	_, err = s.CreateOrder(map[string]any{
		"customer_id": "1",
		"line_items":  []any{map[string]any{"product_id": "1", "quantity": 0}},
	})
	require.ErrorAs(t, err, &verr)

	_, err = s.CreateOrder(map[string]any{
		"customer_id": "1",
		"line_items":  []any{map[string]any{"product_id": "1", "quantity": 1.5}},
	})
	require.ErrorAs(t, err, &verr)

	_, err = s.CreateOrder(map[string]any{
		"customer_id":      "1",
		"line_items":       []any{map[string]any{"product_id": "1"}},
		"financial_status": "settled",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "financial_status", verr.Param)
}

func TestSequentialOrderNumbers(t *testing.T) {
	a := New()
	b := New()
	items := []any{map[string]any{"product_id": "3", "quantity": 1}}

	first, err := a.CreateOrder(map[string]any{"customer_id": "1", "line_items": items})
	require.NoError(t, err)
	second, err := a.CreateOrder(map[string]any{"customer_id": "1", "line_items": items})
	require.NoError(t, err)
	assert.Equal(t, float64(1002), first["order_number"])
	assert.Equal(t, float64(1003), second["order_number"])

	// A fresh simulation mints the same numbers: nothing depends on
	// wall-clock time or process state.
	other, err := b.CreateOrder(map[string]any{"customer_id": "1", "line_items": items})
	require.NoError(t, err)
	assert.Equal(t, first["order_number"], other["order_number"])
	assert.Equal(t, first["id"], other["id"])
}

func TestCancelOrder(t *testing.T) {
	s := New()
	items := []any{map[string]any{"product_id": "2", "quantity": 1}}

	rec, err := s.CreateOrder(map[string]any{"customer_id": "1", "line_items": items})
	require.NoError(t, err)

	customer, _ := s.GetCustomer("1")
	assert.Equal(t, float64(2), customer["orders_count"])
	assert.Equal(t, "218.00", customer["total_spent"])

	cancelled, err := s.CancelOrder(rec["id"].(string))
	require.NoError(t, err)
	assert.NotEmpty(t, cancelled["cancelled_at"])
	assert.Equal(t, "voided", cancelled["financial_status"])

	// Cancelled orders drop out of the aggregates.
	customer, _ = s.GetCustomer("1")
	assert.Equal(t, float64(1), customer["orders_count"])
	assert.Equal(t, "129.00", customer["total_spent"])

	_, err = s.CancelOrder(rec["id"].(string))
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestCloseAndReopenOrder(t *testing.T) {
	s := New()

	closed, err := s.CloseOrder("1")
	require.NoError(t, err)
	assert.NotEmpty(t, closed["closed_at"])

	reopened, err := s.ReopenOrder("1")
	require.NoError(t, err)
	assert.Equal(t, "", reopened["closed_at"])

	_, err = s.ReopenOrder("1")
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestListOrdersByStatus(t *testing.T) {
	s := New()
	items := []any{map[string]any{"product_id": "1", "quantity": 1}}
	_, err := s.CreateOrder(map[string]any{"customer_id": "2", "line_items": items})
	require.NoError(t, err)

	paid, err := s.ListOrders("paid")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "1", paid[0]["id"])

	all, err := s.ListOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.ListOrders("settled")
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestTransactions(t *testing.T) {
	s := New()
	items := []any{map[string]any{"product_id": "1", "quantity": 2}}
	order, err := s.CreateOrder(map[string]any{"customer_id": "2", "line_items": items})
	require.NoError(t, err)
	orderID := order["id"].(string)

	sale, err := s.CreateTransaction(orderID, map[string]any{"kind": "sale", "amount": "258.00"})
	require.NoError(t, err)
	assert.Equal(t, "success", sale["status"])
	assert.Equal(t, "USD", sale["currency"])

	got, _ := s.GetOrder(orderID)
	assert.Equal(t, "paid", got["financial_status"])

	_, err = s.CreateTransaction(orderID, map[string]any{"kind": "refund", "amount": "100.00"})
	require.NoError(t, err)
	got, _ = s.GetOrder(orderID)
	assert.Equal(t, "partially_refunded", got["financial_status"])

	_, err = s.CreateTransaction(orderID, map[string]any{"kind": "refund", "amount": "258.00"})
	require.NoError(t, err)
	got, _ = s.GetOrder(orderID)
	assert.Equal(t, "refunded", got["financial_status"])

	txns, err := s.OrderTransactions(orderID)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	_, err = s.CreateTransaction(orderID, map[string]any{"kind": "chargeback", "amount": "1.00"})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Param)

	_, err = s.CreateTransaction("999", map[string]any{"kind": "sale", "amount": "1.00"})
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestCustomerOrders(t *testing.T) {
	s := New()

	orders, err := s.CustomerOrders("1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "#1001", orders[0]["name"])

	orders, err = s.CustomerOrders("2")
	require.NoError(t, err)
	assert.Nil(t, orders)

	_, err = s.CustomerOrders("999")
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestCreateDraftOrderPricing(t *testing.T) {
	s := New()

	rec, err := s.CreateDraftOrder(map[string]any{
		"customer_id": "1",
		"line_items": []any{
			map[string]any{
				"product_id": "1",
				"quantity":   float64(2),
				"applied_discount": map[string]any{
					"value": "10", "value_type": "percentage",
				},
			},
			map[string]any{"title": "Gift Wrap", "price": "5.00"},
		},
		"applied_discount": map[string]any{"value": "10.00", "value_type": "fixed_amount"},
		"shipping_line":    map[string]any{"title": "Standard Shipping", "price": "7.00"},
	})
	require.NoError(t, err)

	assert.Equal(t, "#D1", rec["name"])
	assert.Equal(t, "open", rec["status"])
	assert.Equal(t, "bob.norman@example.com", rec["email"], "customer email wins over the order email")

	// 258.00 + 5.00 gross; 25.80 line discount, 10.00 order discount,
	// 10% tax on 227.20, plus 7.00 shipping.
	assert.Equal(t, "263.00", rec["subtotal_price"])
	assert.Equal(t, "22.72", rec["total_tax"])
	assert.Equal(t, "256.92", rec["total_price"])

	items := rec["line_items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Trail Running Shoe", first["title"])
	assert.Equal(t, "25.80", first["applied_discount"].(map[string]any)["amount"])

	taxLines := rec["tax_lines"].([]any)
	require.Len(t, taxLines, 1)
	assert.Equal(t, "Sales Tax", taxLines[0].(map[string]any)["title"])
	assert.Equal(t, "22.72", taxLines[0].(map[string]any)["price"])
}

func TestCreateDraftOrderDiscountClamping(t *testing.T) {
	s := New()

	rec, err := s.CreateDraftOrder(map[string]any{
		"line_items": []any{
			map[string]any{
				"title": "Sticker", "price": "10.00",
				"applied_discount": map[string]any{"value": "50.00", "value_type": "fixed_amount"},
			},
		},
	})
	require.NoError(t, err)

	item := rec["line_items"].([]any)[0].(map[string]any)
	assert.Equal(t, "10.00", item["applied_discount"].(map[string]any)["amount"], "a discount never exceeds its line")
	assert.Equal(t, "0.00", rec["total_tax"])
	assert.Equal(t, "0.00", rec["total_price"])
	assert.Empty(t, rec["tax_lines"])
}

func TestCreateDraftOrderTaxExempt(t *testing.T) {
	s := New()

	rec, err := s.CreateDraftOrder(map[string]any{
		"tax_exempt": true,
		"line_items": []any{map[string]any{"product_id": "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", rec["total_tax"])
	assert.Equal(t, "75.00", rec["total_price"])
	assert.Empty(t, rec["tax_lines"])
}

func TestCreateDraftOrderValidation(t *testing.T) {
	s := New()

	_, err := s.CreateDraftOrder(map[string]any{"customer_id": "1"})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "line_items", verr.Param)

	_, err = s.CreateDraftOrder(map[string]any{
		"line_items": []any{map[string]any{"quantity": float64(1)}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "line_items[0]", verr.Param)

	_, err = s.CreateDraftOrder(map[string]any{
		"line_items": []any{map[string]any{
			"title": "x", "price": "1.00",
			"applied_discount": map[string]any{"value": "5.00", "value_type": "half_off"},
		}},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "line_items[0].applied_discount.value_type", verr.Param)

	_, err = s.CreateDraftOrder(map[string]any{
		"customer_id": "999",
		"line_items":  []any{map[string]any{"product_id": "1"}},
	})
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestGetDraftOrderFieldSelection(t *testing.T) {
	s := New()

	created, err := s.CreateDraftOrder(map[string]any{
		"line_items": []any{map[string]any{"product_id": "2"}},
	})
	require.NoError(t, err)
	draftID := created["id"].(string)

	rec, err := s.GetDraftOrder(draftID, "id", "status", "total_price")
	require.NoError(t, err)
	assert.Equal(t, store.Record{"id": draftID, "status": "open", "total_price": created["total_price"]}, rec)

	_, err = s.GetDraftOrder("999")
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestListDraftOrdersByStatus(t *testing.T) {
	s := New()

	a, err := s.CreateDraftOrder(map[string]any{"line_items": []any{map[string]any{"product_id": "1"}}})
	require.NoError(t, err)
	_, err = s.CreateDraftOrder(map[string]any{"line_items": []any{map[string]any{"product_id": "2"}}})
	require.NoError(t, err)

	_, err = s.UpdateDraftOrder(a["id"].(string), map[string]any{"status": "invoice_sent"})
	require.NoError(t, err)

	open, err := s.ListDraftOrders("open")
	require.NoError(t, err)
	require.Len(t, open, 1)

	sent, err := s.ListDraftOrders("invoice_sent")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, a["id"], sent[0]["id"])

	all, err := s.ListDraftOrders("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.ListDraftOrders("archived")
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateDraftOrder(t *testing.T) {
	s := New()

	created, err := s.CreateDraftOrder(map[string]any{
		"line_items": []any{map[string]any{"product_id": "1"}},
		"note":       "first pass",
	})
	require.NoError(t, err)
	draftID := created["id"].(string)

	rec, err := s.UpdateDraftOrder(draftID, map[string]any{"note": "approved", "customer_id": "2"})
	require.NoError(t, err)
	assert.Equal(t, "approved", rec["note"])
	assert.Equal(t, "2", rec["customer_id"])
	assert.Equal(t, created["total_price"], rec["total_price"], "updates keep the computed totals")

	_, err = s.UpdateDraftOrder(draftID, map[string]any{"id": "7"})
	var verr *apierr.ValueError
	require.ErrorAs(t, err, &verr)

	_, err = s.UpdateDraftOrder(draftID, map[string]any{"customer_id": "999"})
	var nferr *apierr.NotFoundError
	require.ErrorAs(t, err, &nferr)

	_, err = s.UpdateDraftOrder("999", map[string]any{"note": "x"})
	require.ErrorAs(t, err, &nferr)
}
