package design

import (
	"fmt"
	"strings"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

var assetUploadSchema = validate.Schema{Params: []validate.Param{
	{Name: "name", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "thumbnail_url", Type: validate.String, MaxLen: 2048, Pattern: urlPattern},
}}

// CreateAssetUploadJob starts an asset upload. Args: "name" (required,
// max 255 characters), "tags" (optional list of strings), "thumbnail_url"
// (optional http or https URL). The job starts in progress; poll it with
// GetAssetUploadJob until the uploaded asset materializes.
func (s *Sim) CreateAssetUploadJob(args map[string]any) (store.Record, error) {
	norm, err := assetUploadSchema.Check(args)
	if err != nil {
		return nil, err
	}
	tags, err := tagList(args["tags"])
	if err != nil {
		return nil, err
	}

	now := s.clock.tick()
	job := store.Record{
		"id":         id.UUID(),
		"status":     "in_progress",
		"name":       norm["name"],
		"tags":       tags,
		"polls":      float64(0),
		"created_at": float64(now),
	}
	if url, ok := norm["thumbnail_url"].(string); ok {
		job["thumbnail"] = map[string]any{"url": url}
	}
	s.store.Put("asset_upload_jobs", job["id"].(string), job)
	s.log.Info("asset upload job created", "id", job["id"], "name", job["name"])
	return assetJobView(job), nil
}

// GetAssetUploadJob returns the current state of an asset upload job.
// Each call counts as one poll; after enough polls an in-progress job
// completes, storing the uploaded asset — or fails when the name carries
// the failure prefix.
func (s *Sim) GetAssetUploadJob(jobID string) (store.Record, error) {
	if jobID == "" {
		return nil, &apierr.ValueError{Param: "job_id", Message: "must not be empty"}
	}
	job, ok := s.store.Get("asset_upload_jobs", jobID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "asset upload job", ID: jobID}
	}

	if job["status"] == "in_progress" {
		polls, _ := job["polls"].(float64)
		polls++
		job["polls"] = polls
		if int(polls) >= completionPolls {
			s.completeAssetUpload(job)
		}
		s.store.Put("asset_upload_jobs", jobID, job)
	}
	return assetJobView(job), nil
}

func (s *Sim) completeAssetUpload(job store.Record) {
	now := s.clock.tick()
	name := job["name"].(string)

	if strings.HasPrefix(name, failTitlePrefix) {
		job["status"] = "failed"
		job["error"] = map[string]any{
			"code":    "upload_failed",
			"message": "Upload failed: Invalid File",
		}
		return
	}

	thumbnail := map[string]any{
		"width":  float64(595),
		"height": float64(335),
	}
	if t, ok := job["thumbnail"].(map[string]any); ok {
		thumbnail["url"] = t["url"]
	}

	asset := store.Record{
		"id":         s.nextAssetID(),
		"type":       "image",
		"name":       name,
		"tags":       job["tags"],
		"thumbnail":  thumbnail,
		"created_at": float64(now),
		"updated_at": float64(now),
	}
	s.store.Put("assets", asset["id"].(string), asset)

	job["status"] = "success"
	job["asset"] = asset
	s.log.Info("asset uploaded", "job", job["id"], "asset", asset["id"])
}

// nextAssetID mints the next asset identifier, sequential like design
// ids.
func (s *Sim) nextAssetID() string {
	return fmt.Sprintf("MAB%08d", s.assetSeq.NextInt())
}

// GetAsset returns a stored asset.
func (s *Sim) GetAsset(assetID string) (store.Record, error) {
	if assetID == "" {
		return nil, &apierr.ValueError{Param: "asset_id", Message: "must not be empty"}
	}
	rec, ok := s.store.Get("assets", assetID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "asset", ID: assetID}
	}
	return rec, nil
}

var assetUpdateSchema = validate.Schema{Params: []validate.Param{
	{Name: "name", Type: validate.String, NonEmpty: true, MaxLen: 255},
}}

// UpdateAsset changes an asset's name and tags. Args: "name" (max 255
// characters), "tags" (list of strings). Absent args leave the stored
// value alone.
func (s *Sim) UpdateAsset(assetID string, args map[string]any) (store.Record, error) {
	norm, err := assetUpdateSchema.Check(args)
	if err != nil {
		return nil, err
	}

	rec, err := s.GetAsset(assetID)
	if err != nil {
		return nil, err
	}
	if name, ok := norm["name"].(string); ok {
		rec["name"] = name
	}
	if _, ok := args["tags"]; ok {
		tags, err := tagList(args["tags"])
		if err != nil {
			return nil, err
		}
		rec["tags"] = tags
	}
	rec["updated_at"] = float64(s.clock.tick())
	s.store.Put("assets", assetID, rec)
	return rec, nil
}

// DeleteAsset removes an asset.
func (s *Sim) DeleteAsset(assetID string) error {
	if assetID == "" {
		return &apierr.ValueError{Param: "asset_id", Message: "must not be empty"}
	}
	if !s.store.Delete("assets", assetID) {
		return &apierr.NotFoundError{Resource: "asset", ID: assetID}
	}
	return nil
}

// tagList normalizes an optional tags argument to a list of strings. A
// nil value means no tags.
func tagList(v any) ([]any, error) {
	switch t := v.(type) {
	case nil:
		return []any{}, nil
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out, nil
	case []any:
		for _, e := range t {
			if _, ok := e.(string); !ok {
				return nil, &apierr.TypeError{Param: "tags", Expected: "list of strings", Received: v}
			}
		}
		return append([]any(nil), t...), nil
	}
	return nil, &apierr.TypeError{Param: "tags", Expected: "list of strings", Received: v}
}

// assetJobView strips bookkeeping fields from the stored job, leaving
// the shape clients see.
func assetJobView(job store.Record) store.Record {
	out := store.Record{}
	for k, v := range job {
		switch k {
		case "name", "tags", "thumbnail", "polls", "created_at":
			continue
		}
		out[k] = v
	}
	return out
}
