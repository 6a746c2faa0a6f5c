package sourcing

import (
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var eventFilterSpec = map[string]filterKind{
	"status_equals":   filterStringList,
	"title_contains":  filterString,
	"updated_at_from": filterTimestamp,
	"updated_at_to":   filterTimestamp,
}

// ListEvents retrieves sourcing events. Args: "filter" (status_equals,
// title_contains, updated_at_from, updated_at_to), "page".
func (s *Sim) ListEvents(args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}
	filter, err := checkFilter(args["filter"], eventFilterSpec)
	if err != nil {
		return nil, err
	}
	pg, err := parsePage(args["page"])
	if err != nil {
		return nil, err
	}

	records := s.store.List("events")
	if len(filter) > 0 {
		kept := records[:0]
		for _, r := range records {
			if eventMatches(r, filter) {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	pageRecords, totalPages := pg.slice(records)
	data := make([]any, 0, len(pageRecords))
	for _, r := range pageRecords {
		data = append(data, object("events", r, nil))
	}
	return document(data, nil, totalPages), nil
}

// GetEvent returns one sourcing event.
func (s *Sim) GetEvent(eventID string) (map[string]any, error) {
	rec, ok := s.store.Get("events", eventID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "event", ID: eventID}
	}
	return map[string]any{"data": object("events", rec, nil)}, nil
}

var bidCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "supplier_company_id", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "amount", Type: validate.Int, Required: true, Min: validate.Bound(1)},
	{Name: "currency", Type: validate.String, Default: "USD", MaxLen: 3},
}}

// ListEventBids returns the bids placed on one event, in bid id order.
func (s *Sim) ListEventBids(eventID string) ([]store.Record, error) {
	if _, ok := s.store.Get("events", eventID); !ok {
		return nil, &apierr.NotFoundError{Resource: "event", ID: eventID}
	}
	var out []store.Record
	for _, r := range s.store.List("bids") {
		if r["event_id"] == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreateEventBid places a bid on an event. Args: "supplier_company_id"
// (required, must exist), "amount" (required positive integer),
// "currency" (three-letter code, defaults to USD). Bids are only
// accepted while the event is open.
func (s *Sim) CreateEventBid(eventID string, args map[string]any) (store.Record, error) {
	event, ok := s.store.Get("events", eventID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "event", ID: eventID}
	}
	if event["status"] != "open" {
		return nil, &apierr.ValueError{Param: "event_id", Message: "names an event that is not open for bidding"}
	}

	norm, err := bidCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}
	supplierID := norm["supplier_company_id"].(string)
	if _, ok := s.store.Get("supplier_companies", supplierID); !ok {
		return nil, &apierr.NotFoundError{Resource: "supplier company", ID: supplierID}
	}

	bidID := s.nextID("bids")
	rec := store.Record{
		"id":                  bidID,
		"event_id":            eventID,
		"supplier_company_id": supplierID,
		"amount":              float64(norm["amount"].(int)),
		"currency":            norm["currency"],
		"status":              "submitted",
		"updated_at":          s.timestamp(),
	}
	s.store.Put("bids", bidID, rec)
	s.log.Info("bid placed", "event", eventID, "supplier", supplierID, "bid", bidID)
	return rec, nil
}

func eventMatches(r store.Record, filter map[string]any) bool {
	updatedAt, _ := r["updated_at"].(string)

	if v, ok := filter["status_equals"].([]string); ok {
		status, _ := r["status"].(string)
		if !containsKey(v, status) {
			return false
		}
	}
	if v, ok := filter["title_contains"].(string); ok {
		title, _ := r["title"].(string)
		if !containsFold(title, v) {
			return false
		}
	}
	if v, ok := filter["updated_at_from"].(string); ok && updatedAt < v {
		return false
	}
	if v, ok := filter["updated_at_to"].(string); ok && updatedAt > v {
		return false
	}
	return true
}
