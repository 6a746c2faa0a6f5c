package sourcing

import (
	"strconv"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/relation"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// projectStates are the lifecycle states a sourcing project moves
// through.
var projectStates = []string{
	"draft", "requested", "planned", "active", "completed", "canceled", "on_hold",
}

var projectRelations = relation.Map{
	"attachments":        {Target: "attachments", Field: "attachment_ids", Many: true},
	"supplier_companies": {Target: "supplier_companies", Field: "supplier_company_ids", Many: true},
}

var projectIncludes = []string{"attachments", "supplier_companies"}

var projectFKFields = []string{"attachment_ids", "supplier_company_ids"}

var projectFilterSpec = map[string]filterKind{
	"title_contains":           filterString,
	"title_not_contains":       filterString,
	"description_contains":     filterString,
	"description_not_contains": filterString,
	"external_id_equals":       filterString,
	"external_id_not_equals":   filterString,
	"external_id_empty":        filterBool,
	"external_id_not_empty":    filterBool,
	"state_equals":             filterStringList,
	"updated_at_from":          filterTimestamp,
	"updated_at_to":            filterTimestamp,
	"number_from":              filterNumber,
	"number_to":                filterNumber,
}

var projectCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "title", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "description", Type: validate.String, Default: ""},
	{Name: "external_id", Type: validate.String, Default: ""},
	{Name: "state", Type: validate.String, Default: "draft", Enum: projectStates},
}}

// ListProjects retrieves sourcing projects. Args: "filter" (object with
// title_contains, title_not_contains, description_contains,
// description_not_contains, external_id_equals, external_id_not_equals,
// external_id_empty, external_id_not_empty, state_equals (list of
// states), updated_at_from, updated_at_to, number_from, number_to),
// "include", "page", "where". Returns a JSON:API document.
func (s *Sim) ListProjects(args map[string]any) (map[string]any, error) {
	if args == nil {
		args = map[string]any{}
	}

	filter, err := checkFilter(args["filter"], projectFilterSpec)
	if err != nil {
		return nil, err
	}
	includes, err := parseInclude(args["include"], projectIncludes)
	if err != nil {
		return nil, err
	}
	pg, err := parsePage(args["page"])
	if err != nil {
		return nil, err
	}

	records := s.store.List("projects")
	records = applyProjectFilters(records, filter)

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
		rels, inc := projectRelations.Resolve(s.store, r, includes)
		data = append(data, object("projects", r, rels, projectFKFields...))
		included = append(included, inc...)
	}
	return document(data, dedupeIncluded(included), totalPages), nil
}

// GetProject returns one project as a JSON:API document.
func (s *Sim) GetProject(projectID string, include any) (map[string]any, error) {
	includes, err := parseInclude(include, projectIncludes)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get("projects", projectID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "project", ID: projectID}
	}

	rels, included := projectRelations.Resolve(s.store, rec, includes)
	doc := map[string]any{"data": object("projects", rec, rels, projectFKFields...)}
	if len(included) > 0 {
		doc["included"] = toAnySlice(included)
	}
	return doc, nil
}

// CreateProject creates a project in the given state. Args: "title"
// (required), "description", "external_id", "state" (defaults to
// draft). The project number equals its sequential id.
func (s *Sim) CreateProject(args map[string]any) (map[string]any, error) {
	norm, err := projectCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}
	if externalID := norm["external_id"].(string); externalID != "" {
		for _, r := range s.store.List("projects") {
			if r["external_id"] == externalID {
				return nil, &apierr.ValueError{Param: "external_id", Message: "is already taken: " + externalID}
			}
		}
	}

	rec := store.Record{}
	for k, v := range norm {
		rec[k] = v
	}
	number := s.seqs["projects"].NextInt()
	projectID := strconv.Itoa(number)
	rec["id"] = projectID
	rec["number"] = float64(number)
	rec["updated_at"] = s.timestamp()
	rec["attachment_ids"] = []any{}
	rec["supplier_company_ids"] = []any{}

	s.store.Put("projects", projectID, rec)
	s.log.Info("project created", "id", projectID, "title", rec["title"])
	return map[string]any{"data": object("projects", rec, nil, projectFKFields...)}, nil
}

// PatchProject merges attrs into an existing project. The id, number
// and linkage fields cannot be patched; a patched state must be valid.
func (s *Sim) PatchProject(projectID string, attrs map[string]any) (map[string]any, error) {
	rec, ok := s.store.Get("projects", projectID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "project", ID: projectID}
	}
	for k := range attrs {
		if k == "id" || k == "number" || containsKey(projectFKFields, k) {
			return nil, &apierr.ValueError{Param: k, Message: "cannot be modified"}
		}
	}
	if v, present := attrs["state"]; present {
		state, ok := v.(string)
		if !ok || !containsKey(projectStates, state) {
			return nil, &apierr.ValueError{Param: "state", Message: "has unsupported value"}
		}
	}

	for k, v := range attrs {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("projects", projectID, rec)
	return map[string]any{"data": object("projects", rec, nil, projectFKFields...)}, nil
}

// DeleteProject removes a project.
func (s *Sim) DeleteProject(projectID string) error {
	if !s.store.Delete("projects", projectID) {
		return &apierr.NotFoundError{Resource: "project", ID: projectID}
	}
	return nil
}

// GetProjectByExternalID looks a project up by its external system
// identifier.
func (s *Sim) GetProjectByExternalID(externalID string, include any) (map[string]any, error) {
	rec, err := s.projectByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	return s.GetProject(rec["id"].(string), include)
}

// PatchProjectByExternalID patches the project carrying the external id.
func (s *Sim) PatchProjectByExternalID(externalID string, attrs map[string]any) (map[string]any, error) {
	rec, err := s.projectByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	return s.PatchProject(rec["id"].(string), attrs)
}

// DeleteProjectByExternalID removes the project carrying the external
// id.
func (s *Sim) DeleteProjectByExternalID(externalID string) error {
	rec, err := s.projectByExternalID(externalID)
	if err != nil {
		return err
	}
	return s.DeleteProject(rec["id"].(string))
}

func (s *Sim) projectByExternalID(externalID string) (store.Record, error) {
	if externalID == "" {
		return nil, &apierr.ValueError{Param: "external_id", Message: "must not be empty"}
	}
	for _, r := range s.store.List("projects") {
		if r["external_id"] == externalID {
			return r, nil
		}
	}
	return nil, &apierr.NotFoundError{Resource: "project with external id", ID: externalID}
}

func applyProjectFilters(records []store.Record, filter map[string]any) []store.Record {
	if len(filter) == 0 {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if projectMatches(r, filter) {
			out = append(out, r)
		}
	}
	return out
}

func projectMatches(r store.Record, filter map[string]any) bool {
	title, _ := r["title"].(string)
	description, _ := r["description"].(string)
	externalID, _ := r["external_id"].(string)
	updatedAt, _ := r["updated_at"].(string)
	number, _ := r["number"].(float64)

	if v, ok := filter["title_contains"].(string); ok && !containsFold(title, v) {
		return false
	}
	if v, ok := filter["title_not_contains"].(string); ok && containsFold(title, v) {
		return false
	}
	if v, ok := filter["description_contains"].(string); ok && !containsFold(description, v) {
		return false
	}
	if v, ok := filter["description_not_contains"].(string); ok && containsFold(description, v) {
		return false
	}
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
	if v, ok := filter["state_equals"].([]string); ok {
		state, _ := r["state"].(string)
		if !containsKey(v, state) {
			return false
		}
	}
	if v, ok := filter["updated_at_from"].(string); ok && updatedAt < v {
		return false
	}
	if v, ok := filter["updated_at_to"].(string); ok && updatedAt > v {
		return false
	}
	if v, ok := filter["number_from"].(float64); ok && number < v {
		return false
	}
	if v, ok := filter["number_to"].(float64); ok && number > v {
		return false
	}
	return true
}
