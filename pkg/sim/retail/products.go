package retail

import (
	"regexp"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

// pricePattern is the decimal-string money format used everywhere in
// this simulation: "199.00", "0.99". Money never travels as a float.
var pricePattern = regexp.MustCompile(`^\d+\.\d{2}$`)

// ListProducts lists products. Args: "query" (substring match on the
// title), "sort_by", "offset", "limit" (1-100), "where". Returns nil
// when nothing matches.
func (s *Sim) ListProducts(args map[string]any) ([]store.Record, error) {
	return s.products.List(args)
}

// GetProduct returns one product.
func (s *Sim) GetProduct(productID string) (store.Record, error) {
	rec, ok := s.store.Get("products", productID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "product", ID: productID}
	}
	return rec, nil
}

// CreateProduct creates a product. Args: "title" (required), "vendor",
// "product_type", "price" (required decimal string, e.g. "49.00").
func (s *Sim) CreateProduct(args map[string]any) (store.Record, error) {
	rec, err := s.products.Create(args)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	rec["created_at"] = now
	rec["updated_at"] = now
	s.store.Put("products", rec["id"].(string), rec)
	s.log.Info("product created", "id", rec["id"], "title", rec["title"])
	return rec, nil
}
