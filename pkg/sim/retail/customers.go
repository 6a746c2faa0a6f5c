package retail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var customerCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "first_name", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "last_name", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "email", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "tags", Type: validate.String, Default: ""},
}}

// ListCustomers returns all customers in id order.
func (s *Sim) ListCustomers() []store.Record {
	return s.store.List("customers")
}

// GetCustomer returns one customer.
func (s *Sim) GetCustomer(customerID string) (store.Record, error) {
	rec, ok := s.store.Get("customers", customerID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "customer", ID: customerID}
	}
	return rec, nil
}

// SearchCustomers matches the query against customer names and email
// addresses, case-insensitively. Returns nil when nothing matches.
func (s *Sim) SearchCustomers(searchQuery string) ([]store.Record, error) {
	if searchQuery == "" {
		return nil, &apierr.ValueError{Param: "query", Message: "must not be empty"}
	}
	needle := strings.ToLower(searchQuery)

	var out []store.Record
	for _, r := range s.store.List("customers") {
		first, _ := r["first_name"].(string)
		last, _ := r["last_name"].(string)
		email, _ := r["email"].(string)
		haystack := strings.ToLower(first + " " + last + " " + email)
		if strings.Contains(haystack, needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreateCustomer creates a customer with zeroed aggregates. Args:
// "first_name", "last_name", "email" (all required), "tags".
func (s *Sim) CreateCustomer(args map[string]any) (store.Record, error) {
	norm, err := customerCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}

	email := norm["email"].(string)
	for _, r := range s.store.List("customers") {
		if r["email"] == email {
			return nil, &apierr.ValueError{Param: "email", Message: "is already taken: " + email}
		}
	}

	customerID := s.nextID("customers")
	now := s.timestamp()
	rec := store.Record{
		"id":           customerID,
		"orders_count": float64(0),
		"total_spent":  "0.00",
		"state":        "enabled",
		"created_at":   now,
		"updated_at":   now,
	}
	for k, v := range norm {
		rec[k] = v
	}
	s.store.Put("customers", customerID, rec)
	s.log.Info("customer created", "id", customerID, "email", email)
	return rec, nil
}

// CustomerOrders returns the customer's orders in id order.
func (s *Sim) CustomerOrders(customerID string) ([]store.Record, error) {
	if _, err := s.GetCustomer(customerID); err != nil {
		return nil, err
	}
	var out []store.Record
	for _, r := range s.store.List("orders") {
		if r["customer_id"] == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// recomputeAggregates rebuilds a customer's order count and lifetime
// spend from their non-cancelled orders. Spend stays a decimal string;
// arithmetic happens in cents to dodge float drift.
func (s *Sim) recomputeAggregates(customerID string) error {
	rec, ok := s.store.Get("customers", customerID)
	if !ok {
		return &apierr.NotFoundError{Resource: "customer", ID: customerID}
	}

	count := 0
	cents := int64(0)
	for _, order := range s.store.List("orders") {
		if order["customer_id"] != customerID {
			continue
		}
		if cancelled, _ := order["cancelled_at"].(string); cancelled != "" {
			continue
		}
		count++
		total, _ := order["total_price"].(string)
		cents += moneyToCents(total)
	}

	rec["orders_count"] = float64(count)
	rec["total_spent"] = centsToMoney(cents)
	rec["updated_at"] = s.timestamp()
	s.store.Put("customers", customerID, rec)
	return nil
}

func moneyToCents(v string) int64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func centsToMoney(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
