package retail

import (
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var transactionCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "kind", Type: validate.String, Required: true, Enum: []string{"sale", "refund", "void"}},
	{Name: "amount", Type: validate.String, Required: true, Pattern: pricePattern},
}}

// CreateTransaction records a payment transaction against an order.
// Args: "kind" (sale, refund, void), "amount" (decimal string). A sale
// marks the order paid; a refund of the full total marks it refunded.
func (s *Sim) CreateTransaction(orderID string, args map[string]any) (store.Record, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	norm, err := transactionCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}

	txnID := s.nextID("transactions")
	rec := store.Record{
		"id":         txnID,
		"order_id":   orderID,
		"kind":       norm["kind"],
		"amount":     norm["amount"],
		"currency":   order["currency"],
		"status":     "success",
		"created_at": s.timestamp(),
	}
	s.store.Put("transactions", txnID, rec)

	switch norm["kind"] {
	case "sale":
		order["financial_status"] = "paid"
	case "refund":
		total, _ := order["total_price"].(string)
		if moneyToCents(norm["amount"].(string)) >= moneyToCents(total) {
			order["financial_status"] = "refunded"
		} else {
			order["financial_status"] = "partially_refunded"
		}
	}
	order["updated_at"] = s.timestamp()
	s.store.Put("orders", orderID, order)

	s.log.Info("transaction recorded", "id", txnID, "order", orderID, "kind", norm["kind"])
	return rec, nil
}

// OrderTransactions returns an order's transactions in id order.
func (s *Sim) OrderTransactions(orderID string) ([]store.Record, error) {
	if _, err := s.GetOrder(orderID); err != nil {
		return nil, err
	}
	var out []store.Record
	for _, r := range s.store.List("transactions") {
		if r["order_id"] == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}
