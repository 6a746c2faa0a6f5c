package design

import (
	"fmt"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/resource"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// RootFolderID is the implicit top-level folder every other folder hangs
// off.
const RootFolderID = "root"

func folderDefinition(s *Sim) *resource.Definition {
	return &resource.Definition{
		Name:       "folder",
		Collection: "folders",
		Fields:     query.Fields{Text: "name", Modified: "updated_at"},
		IDPattern:  designIDPattern,
		CreateSchema: &validate.Schema{Params: []validate.Param{
			{Name: "name", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
			{Name: "parent_folder_id", Type: validate.String, Default: RootFolderID, NonEmpty: true},
		}},
		NewID: func() string { return fmt.Sprintf("FAF%08d", s.designSeq.NextInt()) },
	}
}

// CreateFolder creates a folder under the given parent. Args: "name"
// (required, max 255 chars), "parent_folder_id" (defaults to the root
// folder; must name an existing folder).
func (s *Sim) CreateFolder(args map[string]any) (store.Record, error) {
	rec, err := s.folders.Create(args)
	if err != nil {
		return nil, err
	}

	parentID := rec["parent_folder_id"].(string)
	parent, ok := s.store.Get("folders", parentID)
	if !ok {
		// Roll back the half-created folder so a bad parent leaves no trace.
		s.store.Delete("folders", rec["id"].(string))
		return nil, &apierr.NotFoundError{Resource: "folder", ID: parentID}
	}

	now := s.clock.tick()
	folderID := rec["id"].(string)
	rec["created_at"] = float64(now)
	rec["updated_at"] = float64(now)
	rec["design_ids"] = []any{}
	rec["child_folder_ids"] = []any{}
	s.store.Put("folders", folderID, rec)

	appendChild(parent, "child_folder_ids", folderID)
	s.store.Put("folders", parentID, parent)

	s.log.Info("folder created", "id", folderID, "parent", parentID)
	return rec, nil
}

// GetFolder returns the folder or a not-found error. Folders differ from
// designs here: a folder id always comes from an earlier create, so a
// miss is a real failure.
func (s *Sim) GetFolder(folderID string) (store.Record, error) {
	rec, _, _, err := s.folders.Get(folderID, nil)
	return rec, err
}

// MoveDesignToFolder places a design inside a folder, removing it from
// any folder that currently holds it.
func (s *Sim) MoveDesignToFolder(designID, folderID string) error {
	design, err := s.GetDesign(designID)
	if err != nil {
		return err
	}
	if design == nil {
		return &apierr.NotFoundError{Resource: "design", ID: designID}
	}
	target, err := s.GetFolder(folderID)
	if err != nil {
		return err
	}

	for _, f := range s.store.List("folders") {
		if removeChild(f, "design_ids", designID) {
			f["updated_at"] = float64(s.clock.tick())
			s.store.Put("folders", f["id"].(string), f)
		}
	}

	appendChild(target, "design_ids", designID)
	target["updated_at"] = float64(s.clock.tick())
	s.store.Put("folders", folderID, target)
	return nil
}

// FolderDesigns lists the designs a folder holds, in placement order.
// Ids of designs deleted since placement are skipped.
func (s *Sim) FolderDesigns(folderID string) ([]store.Record, error) {
	folder, err := s.GetFolder(folderID)
	if err != nil {
		return nil, err
	}
	ids, ok := folder["design_ids"].([]any)
	if !ok {
		return nil, &apierr.SchemaError{Path: "folders." + folderID + ".design_ids", Message: fmt.Sprintf("expected id list, found %T", folder["design_ids"])}
	}

	var out []store.Record
	for _, raw := range ids {
		designID, ok := raw.(string)
		if !ok {
			continue
		}
		if rec, ok := s.store.Get("designs", designID); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func appendChild(rec store.Record, field, childID string) {
	ids, _ := rec[field].([]any)
	for _, e := range ids {
		if e == childID {
			return
		}
	}
	rec[field] = append(ids, childID)
}

func removeChild(rec store.Record, field, childID string) bool {
	ids, _ := rec[field].([]any)
	for i, e := range ids {
		if e == childID {
			rec[field] = append(ids[:i:i], ids[i+1:]...)
			return true
		}
	}
	return false
}
