package design

import (
	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var brandTemplateListSchema = validate.Schema{Params: []validate.Param{
	{Name: "query", Type: validate.String, MaxLen: 255},
	{Name: "sort_by", Type: validate.String, Default: "relevance", Enum: []string{
		"relevance", "modified_ascending", "modified_descending", "title_ascending", "title_descending",
	}},
	{Name: "dataset", Type: validate.String, Default: "any", Enum: []string{"any", "non_empty", "empty"}},
	{Name: "offset", Type: validate.Int},
	{Name: "limit", Type: validate.Int, Min: validate.Bound(1), Max: validate.Bound(100)},
	{Name: "where", Type: validate.String},
}}

// ListBrandTemplates lists the team's brand templates. Recognized args:
// "query" (free-text title search), "sort_by" (same orderings as design
// listing), "dataset" (any, non_empty, empty — filters on whether the
// template has autofill fields), "offset", "limit" (1-100), "where".
// Returns nil when nothing matches.
func (s *Sim) ListBrandTemplates(args map[string]any) ([]store.Record, error) {
	norm, err := brandTemplateListSchema.Check(args)
	if err != nil {
		return nil, err
	}

	records := s.store.List("brand_templates")
	if ds := norm["dataset"].(string); ds != "any" {
		filtered := records[:0]
		for _, r := range records {
			if (ds == "non_empty") == templateHasDataset(r) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	p := query.Params{SortBy: query.Sort(norm["sort_by"].(string))}
	if q, ok := norm["query"].(string); ok {
		p.Query = &q
	}
	if v, ok := norm["offset"].(int); ok {
		p.Offset = v
	}
	if v, ok := norm["limit"].(int); ok {
		p.Limit = v
	}
	if v, ok := norm["where"].(string); ok {
		p.Where = v
	}
	return query.Apply(records, p, query.Fields{Text: "title", Modified: "updated_at"})
}

// GetBrandTemplate returns the template, or nil when the id is unknown —
// same contract as GetDesign.
func (s *Sim) GetBrandTemplate(templateID string) (store.Record, error) {
	if templateID == "" {
		return nil, &apierr.ValueError{Param: "brand_template_id", Message: "must not be empty"}
	}
	rec, ok := s.store.Get("brand_templates", templateID)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// GetBrandTemplateDataset returns the template's autofill field
// definitions, keyed by field name. A template with no dataset — absent
// or empty — yields nil, as does an unknown template id.
func (s *Sim) GetBrandTemplateDataset(templateID string) (map[string]any, error) {
	rec, err := s.GetBrandTemplate(templateID)
	if err != nil || rec == nil {
		return nil, err
	}
	datasets, ok := rec["datasets"].(map[string]any)
	if !ok || len(datasets) == 0 {
		return nil, nil
	}
	return datasets, nil
}

func templateHasDataset(r store.Record) bool {
	datasets, ok := r["datasets"].(map[string]any)
	return ok && len(datasets) > 0
}

// CreateAutofillJob fills a brand template's dataset fields with the
// given data and materializes the result as a new design owned by the
// current user. Autofill is synchronous: the returned job is already
// successful and carries the created design under result.design. An
// empty title falls back to the template's title.
func (s *Sim) CreateAutofillJob(templateID string, data map[string]any, title string) (store.Record, error) {
	tmpl, err := s.GetBrandTemplate(templateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, &apierr.NotFoundError{Resource: "brand template", ID: templateID}
	}
	if title == "" {
		title, _ = tmpl["title"].(string)
	}

	now := s.clock.tick()
	designID := s.nextDesignID()
	rec := store.Record{
		"id":          designID,
		"title":       title,
		"design_type": tmpl["design_type"],
		"owner":       map[string]any{"user_id": CurrentUserID, "team_id": CurrentTeamID},
		"created_at":  float64(now),
		"updated_at":  float64(now),
		"page_count":  float64(1),
		"pages":       []any{newPage(1)},
		"urls":        designURLs(designID),
	}
	s.store.Put("designs", designID, rec)

	job := store.Record{
		"id":     id.UUID(),
		"status": "success",
		"data":   data,
		"result": map[string]any{
			"type": "create_design",
			"design": map[string]any{
				"id":         designID,
				"title":      title,
				"urls":       designURLs(designID),
				"created_at": float64(now),
				"updated_at": float64(now),
				"page_count": float64(1),
			},
		},
	}
	s.store.Put("autofill_jobs", job["id"].(string), job)
	s.log.Info("autofill job created", "id", job["id"], "design", designID)
	return job, nil
}

// GetAutofillJob returns a previously created autofill job.
func (s *Sim) GetAutofillJob(jobID string) (store.Record, error) {
	if jobID == "" {
		return nil, &apierr.ValueError{Param: "job_id", Message: "must not be empty"}
	}
	job, ok := s.store.Get("autofill_jobs", jobID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "autofill job", ID: jobID}
	}
	return job, nil
}
