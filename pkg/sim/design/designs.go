package design

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/resource"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var designIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// designTypes are the preset design types a design can be created as.
var designTypes = []string{"doc", "whiteboard", "presentation"}

func designDefinition(s *Sim) *resource.Definition {
	return &resource.Definition{
		Name:       "design",
		Collection: "designs",
		Fields:     query.Fields{Text: "title", Owner: "owner.user_id", Modified: "updated_at"},
		IDPattern:  designIDPattern,
		ListSchema: &validate.Schema{Params: []validate.Param{
			{Name: "query", Type: validate.String, MaxLen: 255},
			{Name: "ownership", Type: validate.String, Default: "any", Enum: []string{"owned", "shared", "any"}},
			{Name: "sort_by", Type: validate.String, Default: "relevance", Enum: []string{
				"relevance", "modified_ascending", "modified_descending", "title_ascending", "title_descending",
			}},
			{Name: "offset", Type: validate.Int},
			{Name: "limit", Type: validate.Int, Min: validate.Bound(1), Max: validate.Bound(100)},
			{Name: "where", Type: validate.String},
		}},
		CreateSchema: &validate.Schema{Params: []validate.Param{
			{Name: "design_type", Type: validate.String, Required: true, Enum: designTypes},
			{Name: "title", Type: validate.String, Default: "Untitled", MaxLen: 255},
			{Name: "asset_id", Type: validate.String},
		}},
		NewID: s.nextDesignID,
	}
}

// nextDesignID mints the next design identifier. Ids are sequential
// rather than random so a fixed call sequence always produces the same
// ids.
func (s *Sim) nextDesignID() string {
	return fmt.Sprintf("DAF%08d", s.designSeq.NextInt())
}

// designIDNumber extracts the numeric part of a design id; ids that
// don't follow the DAF-number form count as zero.
func designIDNumber(designID string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(designID, "DAF"))
	if err != nil {
		return 0
	}
	return n
}

// ListDesigns lists designs with optional free-text search, ownership
// filtering, sorting and pagination. Recognized args: "query" (max 255
// chars), "ownership" (owned, shared, any), "sort_by" (relevance,
// modified_ascending, modified_descending, title_ascending,
// title_descending), "offset", "limit" (1-100), "where". Returns nil
// when nothing matches.
func (s *Sim) ListDesigns(args map[string]any) ([]store.Record, error) {
	return s.designs.List(args)
}

// GetDesign returns the design, or nil when the id is unknown: an absent
// design is an answer here, not a failure. A malformed id is still a
// value violation.
func (s *Sim) GetDesign(designID string) (store.Record, error) {
	if designID == "" {
		return nil, &apierr.ValueError{Param: "design_id", Message: "must not be empty"}
	}
	if !designIDPattern.MatchString(designID) {
		return nil, &apierr.ValueError{Param: "design_id", Message: "contains unsupported characters: " + designID}
	}
	rec, ok := s.store.Get("designs", designID)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// CreateDesign creates a design owned by the current user. Args:
// "design_type" (required, one of doc, whiteboard, presentation),
// "title" (max 255 chars, defaults to Untitled), "asset_id" (optional
// starting asset).
func (s *Sim) CreateDesign(args map[string]any) (store.Record, error) {
	rec, err := s.designs.Create(args)
	if err != nil {
		return nil, err
	}

	now := s.clock.tick()
	designID := rec["id"].(string)
	rec["design_type"] = map[string]any{"type": "preset", "name": rec["design_type"]}
	rec["owner"] = map[string]any{"user_id": CurrentUserID, "team_id": CurrentTeamID}
	rec["created_at"] = float64(now)
	rec["updated_at"] = float64(now)
	rec["page_count"] = float64(1)
	rec["pages"] = []any{newPage(1)}
	rec["urls"] = designURLs(designID)

	s.store.Put("designs", designID, rec)
	s.log.Info("design created", "id", designID, "title", rec["title"])
	return rec, nil
}

// pagesSchema validates GetDesignPages arguments. Offset is validated
// for shape only; out-of-range offsets clamp rather than fail.
var pagesSchema = validate.Schema{Params: []validate.Param{
	{Name: "offset", Type: validate.Int, Default: 1},
	{Name: "limit", Type: validate.Int, Default: 50, Min: validate.Bound(1), Max: validate.Bound(100)},
}}

// GetDesignPages returns one window of the design's pages. Offset is the
// 1-based position of the first page to return; offsets below 1 clamp to
// the first page, offsets past the end yield nil.
func (s *Sim) GetDesignPages(designID string, offset, limit int) ([]store.Record, error) {
	norm, err := pagesSchema.Check(map[string]any{"offset": offset, "limit": limit})
	if err != nil {
		return nil, err
	}

	rec, err := s.GetDesign(designID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &apierr.NotFoundError{Resource: "design", ID: designID}
	}

	raw, ok := rec["pages"].([]any)
	if !ok {
		return nil, &apierr.SchemaError{Path: "designs." + designID + ".pages", Message: fmt.Sprintf("expected page list, found %T", rec["pages"])}
	}

	pages := make([]store.Record, 0, len(raw))
	for _, p := range raw {
		page, ok := p.(map[string]any)
		if !ok {
			return nil, &apierr.SchemaError{Path: "designs." + designID + ".pages", Message: fmt.Sprintf("expected page object, found %T", p)}
		}
		pages = append(pages, page)
	}

	off := norm["offset"].(int)
	if off < 1 {
		off = 1
	}
	start := off - 1
	if start >= len(pages) {
		return nil, nil
	}
	end := len(pages)
	if lim := norm["limit"].(int); start+lim < end {
		end = start + lim
	}
	return pages[start:end], nil
}

// UpdateDesignTitle renames a design and bumps its modification time.
func (s *Sim) UpdateDesignTitle(designID, title string) (store.Record, error) {
	if len(title) > 255 {
		return nil, &apierr.ValueError{Param: "title", Message: fmt.Sprintf("must be at most 255 characters, got %d", len(title))}
	}
	rec, err := s.GetDesign(designID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &apierr.NotFoundError{Resource: "design", ID: designID}
	}

	rec["title"] = title
	rec["updated_at"] = float64(s.clock.tick())
	s.store.Put("designs", designID, rec)
	return rec, nil
}

func newPage(index int) map[string]any {
	return map[string]any{
		"index": float64(index),
		"thumbnail": map[string]any{
			"width":  float64(200),
			"height": float64(280),
		},
	}
}

func designURLs(designID string) map[string]any {
	return map[string]any{
		"edit_url": "https://design.example.com/design/" + designID + "/edit",
		"view_url": "https://design.example.com/design/" + designID + "/view",
	}
}
