package sourcing

import (
	"strings"
	"time"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/relation"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// supplierRelations maps public relationship names to the store
// collections holding the related records. The two e-signature
// relationships are placeholders: the simulated tenant has no signature
// integration, so they always resolve empty.
var supplierRelations = relation.Map{
	"attachments":              {Target: "attachments", Field: "attachment_ids", Many: true},
	"supplier_category":        {Target: "supplier_categories", Field: "supplier_category_id"},
	"default_payment_term":     {Target: "payment_terms", Field: "default_payment_term_id"},
	"payment_types":            {Target: "payment_types", Field: "payment_type_ids", Many: true},
	"default_payment_type":     {Target: "payment_types", Field: "default_payment_type_id"},
	"payment_currencies":       {Target: "payment_currencies", Field: "payment_currency_ids", Many: true},
	"default_payment_currency": {Target: "payment_currencies", Field: "default_payment_currency_id"},
	"docusign_envelopes":       {Placeholder: true},
	"adobe_sign_agreements":    {Placeholder: true},
}

var supplierIncludes = []string{
	"attachments", "supplier_category", "default_payment_term", "payment_types",
	"default_payment_type", "payment_currencies", "default_payment_currency",
	"docusign_envelopes", "adobe_sign_agreements",
}

// supplierFKFields are linkage fields kept out of the attributes block.
var supplierFKFields = []string{
	"attachment_ids", "supplier_category_id", "default_payment_term_id",
	"payment_type_ids", "default_payment_type_id", "payment_currency_ids",
	"default_payment_currency_id",
}

var supplierFilterSpec = map[string]filterKind{
	"external_id_equals":         filterString,
	"external_id_not_equals":     filterString,
	"external_id_empty":          filterBool,
	"external_id_not_empty":      filterBool,
	"name_contains":              filterString,
	"segmentation_status_equals": filterStringList,
	"updated_at_from":            filterTimestamp,
	"updated_at_to":              filterTimestamp,
}

var supplierCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "name", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "description", Type: validate.String, Default: ""},
	{Name: "external_id", Type: validate.String, Default: ""},
	{Name: "segmentation_status", Type: validate.String, Default: "prospective", Enum: []string{
		"preferred", "approved", "prospective", "restricted",
	}},
	{Name: "url", Type: validate.String, Default: ""},
	{Name: "duns_number", Type: validate.String, Default: ""},
}}

// ListSuppliers retrieves supplier companies. Args: "filter" (object
// with external_id_equals, external_id_not_equals, external_id_empty,
// external_id_not_empty, name_contains, segmentation_status_equals,
// updated_at_from, updated_at_to), "include" (comma-separated
// relationship names), "page" (object with size 1-100 and number),
// "where" (filter expression over raw records). Returns a JSON:API
// document with data, included, and meta.count set to the page total.
func (s *Sim) ListSuppliers(args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}

	filter, err := checkFilter(args["filter"], supplierFilterSpec)
	if err != nil {
		return nil, err
	}
	includes, err := parseInclude(args["include"], supplierIncludes)
	if err != nil {
		return nil, err
	}
	pg, err := parsePage(args["page"])
	if err != nil {
		return nil, err
	}

	records := s.store.List("supplier_companies")
	records = applySupplierFilters(records, filter)

	if where, ok := args["where"].(string); ok && where != "" {
		records, err = query.Apply(records, query.Params{Where: where}, query.Fields{})
		if err != nil {
			return nil, err
		}
	}

	pageRecords, totalPages := pg.slice(records)

	data := make([]any, 0, len(pageRecords))
	var included []store.Record
	for _, r := range pageRecords {
		rels, inc := supplierRelations.Resolve(s.store, r, includes)
		data = append(data, object("supplier_companies", r, rels, supplierFKFields...))
		included = append(included, inc...)
	}
	return document(data, dedupeIncluded(included), totalPages), nil
}

// GetSupplier returns one supplier company as a JSON:API document.
func (s *Sim) GetSupplier(supplierID string, include any) (map[string]any, error) {
	includes, err := parseInclude(include, supplierIncludes)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get("supplier_companies", supplierID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "supplier company", ID: supplierID}
	}

	rels, included := supplierRelations.Resolve(s.store, rec, includes)
	doc := map[string]any{"data": object("supplier_companies", rec, rels, supplierFKFields...)}
	if len(included) > 0 {
		doc["included"] = toAnySlice(included)
	}
	return doc, nil
}

// GetSupplierByExternalID looks a supplier up by its external system
// identifier. An empty external id never matches anything.
func (s *Sim) GetSupplierByExternalID(externalID string, include any) (map[string]any, error) {
	if externalID == "" {
		return nil, &apierr.ValueError{Param: "external_id", Message: "must not be empty"}
	}
	for _, r := range s.store.List("supplier_companies") {
		if r["external_id"] == externalID {
			return s.GetSupplier(r["id"].(string), include)
		}
	}
	return nil, &apierr.NotFoundError{Resource: "supplier company with external id", ID: externalID}
}

// CreateSupplier creates a supplier company. Args: "name" (required),
// "description", "external_id", "segmentation_status" (preferred,
// approved, prospective, restricted), "url", "duns_number".
func (s *Sim) CreateSupplier(args map[string]any) (map[string]any, error) {
	norm, err := supplierCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}

	rec := store.Record{}
	for k, v := range norm {
		rec[k] = v
	}
	supplierID := s.nextID("supplier_companies")
	rec["id"] = supplierID
	rec["updated_at"] = s.timestamp()

	s.store.Put("supplier_companies", supplierID, rec)
	s.log.Info("supplier created", "id", supplierID, "name", rec["name"])
	return map[string]any{"data": object("supplier_companies", rec, nil, supplierFKFields...)}, nil
}

// PatchSupplier merges attrs into an existing supplier and bumps its
// modification timestamp. The id and linkage fields cannot be patched.
func (s *Sim) PatchSupplier(supplierID string, attrs map[string]any) (map[string]any, error) {
	rec, ok := s.store.Get("supplier_companies", supplierID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "supplier company", ID: supplierID}
	}
	for k := range attrs {
		if k == "id" || containsKey(supplierFKFields, k) {
			return nil, &apierr.ValueError{Param: k, Message: "cannot be modified"}
		}
	}

	for k, v := range attrs {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("supplier_companies", supplierID, rec)
	return map[string]any{"data": object("supplier_companies", rec, nil, supplierFKFields...)}, nil
}

// DeleteSupplier removes a supplier company.
func (s *Sim) DeleteSupplier(supplierID string) error {
	if !s.store.Delete("supplier_companies", supplierID) {
		return &apierr.NotFoundError{Resource: "supplier company", ID: supplierID}
	}
	return nil
}

func applySupplierFilters(records []store.Record, filter map[string]any) []store.Record {
	if len(filter) == 0 {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if supplierMatches(r, filter) {
			out = append(out, r)
		}
	}
	return out
}

func supplierMatches(r store.Record, filter map[string]any) bool {
	externalID, _ := r["external_id"].(string)
	updatedAt, _ := r["updated_at"].(string)

	if v, ok := filter["external_id_equals"].(string); ok && externalID != v {
		return false
	}
	if v, ok := filter["external_id_not_equals"].(string); ok && externalID == v {
		return false
	}
	if v, ok := filter["external_id_empty"].(bool); ok && v != (externalID == "") {
		return false
	}
	if v, ok := filter["external_id_not_empty"].(bool); ok && v != (externalID != "") {
		return false
	}
	if v, ok := filter["name_contains"].(string); ok {
		name, _ := r["name"].(string)
		if !strings.Contains(strings.ToLower(name), strings.ToLower(v)) {
			return false
		}
	}
	if v, ok := filter["segmentation_status_equals"].([]string); ok {
		status, _ := r["segmentation_status"].(string)
		if !containsKey(v, status) {
			return false
		}
	}
	// ISO-8601 timestamps compare correctly as strings.
	if v, ok := filter["updated_at_from"].(string); ok && updatedAt < v {
		return false
	}
	if v, ok := filter["updated_at_to"].(string); ok && updatedAt > v {
		return false
	}
	return true
}

// timestamp renders the simulated clock as an ISO-8601 string. The clock
// counts seconds from a fixed epoch, so a fixed call sequence always
// yields the same timestamps.
func (s *Sim) timestamp() string {
	s.tick++
	return time.Unix(sourcingEpoch+s.tick, 0).UTC().Format(time.RFC3339)
}

const sourcingEpoch int64 = 1700000000

func dedupeIncluded(included []store.Record) []store.Record {
	seen := map[string]bool{}
	out := included[:0]
	for _, r := range included {
		key, _ := r["id"].(string)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func toAnySlice(records []store.Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
