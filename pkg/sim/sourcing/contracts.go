package sourcing

import (
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/relation"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var contractRelations = relation.Map{
	"contract_type":    {Target: "contract_types", Field: "contract_type_id"},
	"supplier_company": {Target: "supplier_companies", Field: "supplier_company_id"},
	"attachments":      {Target: "attachments", Field: "attachment_ids", Many: true},
}

var contractIncludes = []string{"contract_type", "supplier_company", "attachments"}

var contractFKFields = []string{"contract_type_id", "supplier_company_id", "attachment_ids"}

var contractFilterSpec = map[string]filterKind{
	"external_id_equals":     filterString,
	"external_id_not_equals": filterString,
	"status_equals":          filterStringList,
	"updated_at_from":        filterTimestamp,
	"updated_at_to":          filterTimestamp,
}

var contractStatuses = []string{"draft", "active", "expired", "terminated"}

var contractCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "title", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "supplier_company_id", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "contract_type_id", Type: validate.String},
	{Name: "external_id", Type: validate.String, Default: ""},
	{Name: "status", Type: validate.String, Default: "draft", Enum: contractStatuses},
}}

// ListContracts retrieves contracts. Args: "filter" (external_id_equals,
// external_id_not_equals, status_equals, updated_at_from,
// updated_at_to), "include" (contract_type, supplier_company,
// attachments), "page".
func (s *Sim) ListContracts(args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}

	filter, err := checkFilter(args["filter"], contractFilterSpec)
	if err != nil {
		return nil, err
	}
	includes, err := parseInclude(args["include"], contractIncludes)
	if err != nil {
		return nil, err
	}
	pg, err := parsePage(args["page"])
	if err != nil {
		return nil, err
	}

	records := s.store.List("contracts")
	if len(filter) > 0 {
		kept := records[:0]
		for _, r := range records {
			if contractMatches(r, filter) {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	pageRecords, totalPages := pg.slice(records)
	data := make([]any, 0, len(pageRecords))
	var included []store.Record
	for _, r := range pageRecords {
		rels, inc := contractRelations.Resolve(s.store, r, includes)
		data = append(data, object("contracts", r, rels, contractFKFields...))
		included = append(included, inc...)
	}
	return document(data, dedupeIncluded(included), totalPages), nil
}

// GetContract returns one contract as a JSON:API document.
func (s *Sim) GetContract(contractID string, include any) (map[string]any, error) {
	includes, err := parseInclude(include, contractIncludes)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get("contracts", contractID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "contract", ID: contractID}
	}
	rels, included := contractRelations.Resolve(s.store, rec, includes)
	doc := map[string]any{"data": object("contracts", rec, rels, contractFKFields...)}
	if len(included) > 0 {
		doc["included"] = toAnySlice(included)
	}
	return doc, nil
}

// CreateContract creates a contract. Args: "title" (required),
// "supplier_company_id" (required, must name an existing supplier),
// "contract_type_id" (optional, must exist when given), "external_id",
// "status" (draft, active, expired, terminated; defaults to draft).
func (s *Sim) CreateContract(args map[string]any) (map[string]any, error) {
	norm, err := contractCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}

	supplierID := norm["supplier_company_id"].(string)
	if _, ok := s.store.Get("supplier_companies", supplierID); !ok {
		return nil, &apierr.NotFoundError{Resource: "supplier company", ID: supplierID}
	}
	if typeID, ok := norm["contract_type_id"].(string); ok {
		if _, found := s.store.Get("contract_types", typeID); !found {
			return nil, &apierr.NotFoundError{Resource: "contract type", ID: typeID}
		}
	}

	rec := store.Record{}
	for k, v := range norm {
		rec[k] = v
	}
	contractID := s.nextID("contracts")
	rec["id"] = contractID
	rec["updated_at"] = s.timestamp()

	s.store.Put("contracts", contractID, rec)
	s.log.Info("contract created", "id", contractID, "supplier", supplierID)
	return map[string]any{"data": object("contracts", rec, nil, contractFKFields...)}, nil
}

// PatchContract merges attrs into an existing contract. Status changes
// are validated against the contract status enum; linkage fields and the
// id cannot be patched.
func (s *Sim) PatchContract(contractID string, attrs map[string]any) (map[string]any, error) {
	rec, ok := s.store.Get("contracts", contractID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "contract", ID: contractID}
	}
	for k := range attrs {
		if k == "id" || containsKey(contractFKFields, k) {
			return nil, &apierr.ValueError{Param: k, Message: "cannot be modified"}
		}
	}
	if status, ok := attrs["status"]; ok {
		sv, isStr := status.(string)
		if !isStr {
			return nil, &apierr.TypeError{Param: "status", Expected: "string", Received: status}
		}
		if !containsKey(contractStatuses, sv) {
			return nil, &apierr.ValueError{Param: "status", Message: "must be one of draft, active, expired, terminated, got " + sv}
		}
	}

	for k, v := range attrs {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("contracts", contractID, rec)
	return map[string]any{"data": object("contracts", rec, nil, contractFKFields...)}, nil
}

func contractMatches(r store.Record, filter map[string]any) bool {
	externalID, _ := r["external_id"].(string)
	updatedAt, _ := r["updated_at"].(string)

	if v, ok := filter["external_id_equals"].(string); ok && externalID != v {
		return false
	}
	if v, ok := filter["external_id_not_equals"].(string); ok && externalID == v {
		return false
	}
	if v, ok := filter["status_equals"].([]string); ok {
		status, _ := r["status"].(string)
		if !containsKey(v, status) {
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
