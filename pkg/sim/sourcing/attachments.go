package sourcing

import (
	"strings"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// attachmentListCap bounds a filtered attachment listing regardless of
// how many ids the caller names.
const attachmentListCap = 50

var attachmentCreateSchema = validate.Schema{Params: []validate.Param{
	{Name: "name", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
	{Name: "content_type", Type: validate.String, Default: "application/octet-stream"},
	{Name: "external_id", Type: validate.String, Default: ""},
	{Name: "uploaded_by", Type: validate.String, Default: ""},
}}

// ListAttachments retrieves attachments by id. The filter is a
// comma-separated id list; blank entries are skipped, and a blank filter
// matches nothing. At most 50 attachments come back per call.
func (s *Sim) ListAttachments(filterIDEquals string) (map[string]any, error) {
	var wanted []string
	for _, part := range strings.Split(filterIDEquals, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			wanted = append(wanted, part)
		}
	}

	data := []any{}
	for _, r := range s.store.List("attachments") {
		if len(data) >= attachmentListCap {
			break
		}
		if recID, _ := r["id"].(string); containsKey(wanted, recID) {
			data = append(data, object("attachments", r, nil))
		}
	}
	return document(data, nil, 1), nil
}

// GetAttachment returns one attachment as a JSON:API document.
func (s *Sim) GetAttachment(attachmentID string) (map[string]any, error) {
	rec, ok := s.store.Get("attachments", attachmentID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "attachment", ID: attachmentID}
	}
	return map[string]any{"data": object("attachments", rec, nil)}, nil
}

// CreateAttachment registers an attachment. Args: "name" (required),
// "content_type", "external_id", "uploaded_by". A non-empty external id
// must be unique across attachments.
func (s *Sim) CreateAttachment(args map[string]any) (map[string]any, error) {
	norm, err := attachmentCreateSchema.Check(args)
	if err != nil {
		return nil, err
	}
	if externalID := norm["external_id"].(string); externalID != "" {
		for _, r := range s.store.List("attachments") {
			if r["external_id"] == externalID {
				return nil, &apierr.ValueError{Param: "external_id", Message: "is already taken: " + externalID}
			}
		}
	}

	rec := store.Record{}
	for k, v := range norm {
		rec[k] = v
	}
	attachmentID := s.nextID("attachments")
	rec["id"] = attachmentID
	rec["updated_at"] = s.timestamp()

	s.store.Put("attachments", attachmentID, rec)
	s.log.Info("attachment created", "id", attachmentID, "name", rec["name"])
	return map[string]any{"data": object("attachments", rec, nil)}, nil
}

// PatchAttachment merges attrs into an existing attachment. The id
// cannot be patched; a patched external id must stay unique.
func (s *Sim) PatchAttachment(attachmentID string, attrs map[string]any) (map[string]any, error) {
	rec, ok := s.store.Get("attachments", attachmentID)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: "attachment", ID: attachmentID}
	}
	if _, present := attrs["id"]; present {
		return nil, &apierr.ValueError{Param: "id", Message: "cannot be modified"}
	}
	if v, present := attrs["external_id"]; present {
		externalID, ok := v.(string)
		if !ok {
			return nil, &apierr.TypeError{Param: "external_id", Expected: "string", Received: v}
		}
		if externalID != "" {
			for _, r := range s.store.List("attachments") {
				if r["id"] != attachmentID && r["external_id"] == externalID {
					return nil, &apierr.ValueError{Param: "external_id", Message: "is already taken: " + externalID}
				}
			}
		}
	}

	for k, v := range attrs {
		rec[k] = v
	}
	rec["updated_at"] = s.timestamp()
	s.store.Put("attachments", attachmentID, rec)
	return map[string]any{"data": object("attachments", rec, nil)}, nil
}

// DeleteAttachment removes an attachment.
func (s *Sim) DeleteAttachment(attachmentID string) error {
	if !s.store.Delete("attachments", attachmentID) {
		return &apierr.NotFoundError{Resource: "attachment", ID: attachmentID}
	}
	return nil
}

// GetAttachmentByExternalID looks an attachment up by its external
// system identifier.
func (s *Sim) GetAttachmentByExternalID(externalID string) (map[string]any, error) {
	rec, err := s.attachmentByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"data": object("attachments", rec, nil)}, nil
}

// PatchAttachmentByExternalID patches the attachment carrying the
// external id.
func (s *Sim) PatchAttachmentByExternalID(externalID string, attrs map[string]any) (map[string]any, error) {
	rec, err := s.attachmentByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	return s.PatchAttachment(rec["id"].(string), attrs)
}

// DeleteAttachmentByExternalID removes the attachment carrying the
// external id.
func (s *Sim) DeleteAttachmentByExternalID(externalID string) error {
	rec, err := s.attachmentByExternalID(externalID)
	if err != nil {
		return err
	}
	return s.DeleteAttachment(rec["id"].(string))
}

func (s *Sim) attachmentByExternalID(externalID string) (store.Record, error) {
	if externalID == "" {
		return nil, &apierr.ValueError{Param: "external_id", Message: "must not be empty"}
	}
	for _, r := range s.store.List("attachments") {
		if r["external_id"] == externalID {
			return r, nil
		}
	}
	return nil, &apierr.NotFoundError{Resource: "attachment with external id", ID: externalID}
}
