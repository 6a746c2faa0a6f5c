package design

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// validMimeTypes are the file formats import accepts.
var validMimeTypes = []string{
	"application/pdf", "image/png", "image/jpeg", "image/jpg",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

var urlPattern = regexp.MustCompile(`^https?://[^\s]+$`)

// failTitlePrefix marks a title whose import should fail. Real imports
// fail nondeterministically on bad files; the simulation needs a
// reproducible trigger instead, so clients opt into the failure path via
// the title itself.
const failTitlePrefix = "fail:"

// completionPolls is how many status checks an in-progress job survives
// before it completes. Progression is driven by observation count, not
// wall-clock time, so replays are exact.
const completionPolls = 2

var importMetadataSchema = validate.Schema{Params: []validate.Param{
	{Name: "title_base64", Type: validate.String, Required: true, NonEmpty: true},
	{Name: "mime_type", Type: validate.String, Enum: validMimeTypes},
}}

// CreateImportJob starts a design import from an uploaded file. Args:
// "title_base64" (required, base64-encoded title, max 50 characters
// decoded), "mime_type" (optional, must be a supported format). The job
// starts in progress; poll it with GetImportJob.
func (s *Sim) CreateImportJob(args map[string]any) (store.Record, error) {
	norm, err := importMetadataSchema.Check(args)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(norm["title_base64"].(string))
	if err != nil {
		return nil, &apierr.ValueError{Param: "title_base64", Message: "must be valid base64"}
	}
	title := string(decoded)
	if len(title) > 50 {
		return nil, &apierr.ValueError{Param: "title_base64", Message: fmt.Sprintf("decoded title must be at most 50 characters, got %d", len(title))}
	}

	return jobView(s.startJob(title, "file_import")), nil
}

var urlImportSchema = validate.Schema{Params: []validate.Param{
	{Name: "title", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "url", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 2048, Pattern: urlPattern},
	{Name: "mime_type", Type: validate.String, NonEmpty: true, MaxLen: 100, Enum: validMimeTypes},
}}

// CreateURLImportJob starts a design import from a public URL. Args:
// "title" (required, 1-255 characters), "url" (required http or https,
// max 2048 characters), "mime_type" (optional supported format).
func (s *Sim) CreateURLImportJob(args map[string]any) (store.Record, error) {
	norm, err := urlImportSchema.Check(args)
	if err != nil {
		return nil, err
	}
	job := s.startJob(norm["title"].(string), "url_import")
	job["url"] = norm["url"]
	s.store.Put("import_jobs", job["id"].(string), job)
	return jobView(job), nil
}

// startJob stores and returns the full job record, bookkeeping fields
// included.
func (s *Sim) startJob(title, jobType string) store.Record {
	now := s.clock.tick()
	job := store.Record{
		"id":         id.UUID(),
		"status":     "in_progress",
		"title":      title,
		"job_type":   jobType,
		"polls":      float64(0),
		"created_at": float64(now),
		"updated_at": float64(now),
	}
	s.store.Put("import_jobs", job["id"].(string), job)
	s.log.Info("import job created", "id", job["id"], "type", jobType)
	return job
}

// GetImportJob returns the current state of a file import job. Each call
// counts as one poll; after enough polls an in-progress job completes —
// successfully, materializing the imported design, or with an error when
// the title carries the failure prefix.
func (s *Sim) GetImportJob(jobID string) (store.Record, error) {
	return s.pollJob(jobID, "file_import")
}

// GetURLImportJob returns the current state of a URL import job. Asking
// for a file import job by this route is a value violation, mirroring
// the two jobs living on separate endpoints.
func (s *Sim) GetURLImportJob(jobID string) (store.Record, error) {
	return s.pollJob(jobID, "url_import")
}

func (s *Sim) pollJob(jobID, jobType string) (store.Record, error) {
	if jobID == "" {
		return nil, &apierr.ValueError{Param: "job_id", Message: "must not be empty"}
	}
	job, ok := s.store.Get("import_jobs", jobID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "import job", ID: jobID}
	}
	if job["job_type"] != jobType {
		return nil, &apierr.ValueError{Param: "job_id", Message: fmt.Sprintf("names a %v job, not a %s job", job["job_type"], jobType)}
	}

	if job["status"] == "in_progress" {
		polls := job["polls"].(float64) + 1
		job["polls"] = polls
		if int(polls) >= completionPolls {
			s.completeJob(job)
		}
		s.store.Put("import_jobs", jobID, job)
	}

	return jobView(job), nil
}

func (s *Sim) completeJob(job store.Record) {
	now := s.clock.tick()
	job["updated_at"] = float64(now)
	title := job["title"].(string)

	if strings.HasPrefix(title, failTitlePrefix) {
		job["status"] = "failed"
		job["error"] = map[string]any{
			"code":    "invalid_file",
			"message": "Import failed: Invalid File",
		}
		return
	}

	job["status"] = "success"
	designID := s.nextDesignID()
	rec := store.Record{
		"id":          designID,
		"title":       title,
		"design_type": map[string]any{"type": "preset", "name": "doc"},
		"asset_id":    "imported_asset",
		"owner":       map[string]any{"user_id": CurrentUserID, "team_id": CurrentTeamID},
		"created_at":  float64(now),
		"updated_at":  float64(now),
		"page_count":  float64(1),
		"pages":       []any{newPage(1)},
		"urls":        designURLs(designID),
	}
	s.store.Put("designs", designID, rec)

	job["result"] = map[string]any{
		"designs": []any{map[string]any{
			"id":         designID,
			"title":      title,
			"urls":       designURLs(designID),
			"created_at": float64(now),
			"updated_at": float64(now),
			"page_count": float64(1),
		}},
	}
}

// jobView strips bookkeeping fields from the stored job, leaving the
// shape clients see.
func jobView(job store.Record) store.Record {
	out := store.Record{}
	for k, v := range job {
		switch k {
		case "title", "url", "polls", "created_at", "job_type":
			continue
		}
		out[k] = v
	}
	return out
}
