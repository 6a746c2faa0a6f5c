package design

import (
	"encoding/base64"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

func titles(records []store.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r["title"].(string)
	}
	return out
}

func TestListDesignsDefaults(t *testing.T) {
	s := New()
	got, err := s.ListDesigns(nil)
	require.NoError(t, err)
	require.Len(t, got, 5)
}

func TestListDesignsQueryFiltering(t *testing.T) {
	s := New()

	got, err := s.ListDesigns(map[string]any{"query": "design"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Design", "Gamma Shared Design"}, titles(got))

	got, err = s.ListDesigns(map[string]any{"query": "SEARCHME"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta SearchMe"}, titles(got))

	// No matches is the nil sentinel.
	got, err = s.ListDesigns(map[string]any{"query": "zzz"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListDesignsOwnership(t *testing.T) {
	s := New()

	got, err := s.ListDesigns(map[string]any{"ownership": "shared"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gamma Shared Design"}, titles(got))

	got, err = s.ListDesigns(map[string]any{"ownership": "owned"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.NotContains(t, titles(got), "Gamma Shared Design")
}

func TestListDesignsSorting(t *testing.T) {
	s := New()

	got, err := s.ListDesigns(map[string]any{"sort_by": "title_ascending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha Design", "Beta SearchMe", "Delta Another", "Gamma Shared Design", "My summer holiday"}, titles(got))

	got, err = s.ListDesigns(map[string]any{"sort_by": "modified_descending"})
	require.NoError(t, err)
	assert.Equal(t, "My summer holiday", got[0]["title"])
	assert.Equal(t, "Beta SearchMe", got[4]["title"])
}

func TestListDesignsValidationPrecedence(t *testing.T) {
	s := New()

	// Over-long query wins over the later bad ownership value.
	long := strings.Repeat("q", 256)
	_, err := s.ListDesigns(map[string]any{"query": long, "ownership": "everyone"})
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "query", ve.Param)

	// A mistyped query wins over its own length problem.
	_, err = s.ListDesigns(map[string]any{"query": 42, "sort_by": "newest"})
	var te *apierr.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "query", te.Param)

	// Ownership enum is checked before sort enum.
	_, err = s.ListDesigns(map[string]any{"ownership": "everyone", "sort_by": "newest"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ownership", ve.Param)
}

func TestListDesignsWhereExpression(t *testing.T) {
	s := New()
	got, err := s.ListDesigns(map[string]any{"where": `page_count >= 3`})
	require.NoError(t, err)
	assert.Equal(t, []string{"Delta Another", "My summer holiday"}, titles(got))
}

func TestGetDesign(t *testing.T) {
	s := New()

	rec, err := s.GetDesign("DAF00000001")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Design", rec["title"])

	// Unknown id is an empty answer, not an error.
	rec, err = s.GetDesign("DAF99999999")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Malformed id is rejected before the store is consulted.
	_, err = s.GetDesign("bad/id")
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
}

func TestCreateDesign(t *testing.T) {
	s := New()

	rec, err := s.CreateDesign(map[string]any{"design_type": "presentation", "title": "Q3 Review"})
	require.NoError(t, err)
	assert.Equal(t, "DAF00000006", rec["id"], "ids continue past the seed sequence")
	assert.Equal(t, "Q3 Review", rec["title"])
	assert.Equal(t, CurrentUserID, rec["owner"].(map[string]any)["user_id"])

	// Defaults and persistence.
	rec, err = s.CreateDesign(map[string]any{"design_type": "doc"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", rec["title"])
	stored, ok := s.Store().Get("designs", rec["id"].(string))
	require.True(t, ok)
	assert.Equal(t, "Untitled", stored["title"])

	_, err = s.CreateDesign(map[string]any{"design_type": "poster"})
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "design_type", ve.Param)
}

func TestCreateDesignDeterministic(t *testing.T) {
	run := func() []string {
		s := New()
		a, err := s.CreateDesign(map[string]any{"design_type": "doc", "title": "One"})
		require.NoError(t, err)
		b, err := s.CreateDesign(map[string]any{"design_type": "doc", "title": "Two"})
		require.NoError(t, err)
		return []string{a["id"].(string), b["id"].(string)}
	}
	assert.Equal(t, run(), run(), "identical call sequences mint identical ids")
}

func TestGetDesignPages(t *testing.T) {
	s := New()

	// DAF00000005 has five pages.
	pages, err := s.GetDesignPages("DAF00000005", 2, 2)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, float64(2), pages[0]["index"])
	assert.Equal(t, float64(3), pages[1]["index"])

	// Offset below 1 clamps to the first page.
	pages, err = s.GetDesignPages("DAF00000005", -7, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), pages[0]["index"])

	// Offset past the end is an empty answer.
	pages, err = s.GetDesignPages("DAF00000005", 10, 2)
	require.NoError(t, err)
	assert.Nil(t, pages)

	// Limit is range checked.
	_, err = s.GetDesignPages("DAF00000005", 1, 500)
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "limit", ve.Param)

	// Unknown design is a not-found here, unlike GetDesign.
	_, err = s.GetDesignPages("DAF99999999", 1, 10)
	var nf *apierr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateDesignTitle(t *testing.T) {
	s := New()
	before, err := s.GetDesign("DAF00000002")
	require.NoError(t, err)
	wasUpdated := before["updated_at"].(float64)

	rec, err := s.UpdateDesignTitle("DAF00000002", "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", rec["title"])
	assert.Greater(t, rec["updated_at"].(float64), wasUpdated)
}

func TestFolders(t *testing.T) {
	s := New()

	folder, err := s.CreateFolder(map[string]any{"name": "Marketing"})
	require.NoError(t, err)
	folderID := folder["id"].(string)

	root, err := s.GetFolder(RootFolderID)
	require.NoError(t, err)
	assert.Contains(t, root["child_folder_ids"], folderID)

	require.NoError(t, s.MoveDesignToFolder("DAF00000001", folderID))
	designs, err := s.FolderDesigns(folderID)
	require.NoError(t, err)
	require.Len(t, designs, 1)
	assert.Equal(t, "Alpha Design", designs[0]["title"])

	// The move removed the design from the root folder.
	rootDesigns, err := s.FolderDesigns(RootFolderID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta SearchMe"}, titles(rootDesigns))

	// A bad parent leaves nothing behind.
	_, err = s.CreateFolder(map[string]any{"name": "Orphan", "parent_folder_id": "nope"})
	var nf *apierr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSnapshotRoundTripThroughSim(t *testing.T) {
	s := New()
	_, err := s.CreateDesign(map[string]any{"design_type": "doc", "title": "Persisted"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, s.Store().Save(path))

	restored := New()
	require.NoError(t, restored.Store().Load(path))
	got, err := restored.ListDesigns(map[string]any{"query": "Persisted"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func encodeTitle(t *testing.T, title string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(title))
}

func TestImportJobLifecycle(t *testing.T) {
	s := New()

	job, err := s.CreateImportJob(map[string]any{"title_base64": encodeTitle(t, "Imported Deck")})
	require.NoError(t, err)
	jobID := job["id"].(string)
	assert.Equal(t, "in_progress", job["status"])

	// First poll: still running. Second poll: done.
	job, err = s.GetImportJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", job["status"])

	job, err = s.GetImportJob(jobID)
	require.NoError(t, err)
	require.Equal(t, "success", job["status"])

	designs := job["result"].(map[string]any)["designs"].([]any)
	require.Len(t, designs, 1)
	designID := designs[0].(map[string]any)["id"].(string)

	// The imported design is a real design afterwards.
	rec, err := s.GetDesign(designID)
	require.NoError(t, err)
	assert.Equal(t, "Imported Deck", rec["title"])
}

func TestImportJobFailurePath(t *testing.T) {
	s := New()
	job, err := s.CreateImportJob(map[string]any{"title_base64": encodeTitle(t, "fail:broken file")})
	require.NoError(t, err)
	jobID := job["id"].(string)

	s.GetImportJob(jobID)
	job, err = s.GetImportJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "failed", job["status"])
	assert.Equal(t, "invalid_file", job["error"].(map[string]any)["code"])
	_, hasResult := job["result"]
	assert.False(t, hasResult)
}

func TestImportJobValidation(t *testing.T) {
	s := New()

	_, err := s.CreateImportJob(map[string]any{})
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title_base64", ve.Param)

	_, err = s.CreateImportJob(map[string]any{"title_base64": "not!!base64"})
	require.ErrorAs(t, err, &ve)

	_, err = s.CreateImportJob(map[string]any{"title_base64": encodeTitle(t, strings.Repeat("x", 51))})
	require.ErrorAs(t, err, &ve)

	_, err = s.CreateImportJob(map[string]any{
		"title_base64": encodeTitle(t, "ok"),
		"mime_type":    "application/zip",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "mime_type", ve.Param)
}

func TestURLImportJob(t *testing.T) {
	s := New()

	job, err := s.CreateURLImportJob(map[string]any{
		"title": "From URL",
		"url":   "https://files.example.com/deck.pdf",
	})
	require.NoError(t, err)
	jobID := job["id"].(string)

	// A URL job is not reachable through the file import endpoint.
	_, err = s.GetImportJob(jobID)
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)

	s.GetURLImportJob(jobID)
	job, err = s.GetURLImportJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "success", job["status"])

	_, err = s.CreateURLImportJob(map[string]any{"title": "x", "url": "ftp://nope"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "url", ve.Param)

	_, err = s.GetURLImportJob("unknown-job")
	var nf *apierr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListBrandTemplates(t *testing.T) {
	s := New()

	got, err := s.ListBrandTemplates(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = s.ListBrandTemplates(map[string]any{"query": "advert"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Advertisement Template"}, titles(got))

	got, err = s.ListBrandTemplates(map[string]any{"sort_by": "title_descending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain Letterhead", "Advertisement Template"}, titles(got))

	_, err = s.ListBrandTemplates(map[string]any{"dataset": "some"})
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "dataset", ve.Param)
}

func TestListBrandTemplatesDatasetFilter(t *testing.T) {
	s := New()

	got, err := s.ListBrandTemplates(map[string]any{"dataset": "non_empty"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Advertisement Template"}, titles(got))

	got, err = s.ListBrandTemplates(map[string]any{"dataset": "empty"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Plain Letterhead"}, titles(got))
}

func TestGetBrandTemplate(t *testing.T) {
	s := New()

	rec, err := s.GetBrandTemplate("DEMzWSwy3BI")
	require.NoError(t, err)
	assert.Equal(t, "Advertisement Template", rec["title"])

	// Unknown id is an empty answer, like GetDesign.
	rec, err = s.GetBrandTemplate("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetBrandTemplateDataset(t *testing.T) {
	s := New()

	ds, err := s.GetBrandTemplateDataset("DEMzWSwy3BI")
	require.NoError(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, map[string]any{"type": "image"}, ds["cute_pet_image_of_the_day"])

	// A template without autofill fields has no dataset to return.
	ds, err = s.GetBrandTemplateDataset("DEMb2Z0yNbQ")
	require.NoError(t, err)
	assert.Nil(t, ds)

	ds, err = s.GetBrandTemplateDataset("nope-id")
	require.NoError(t, err)
	assert.Nil(t, ds)
}

func TestCreateAutofillJob(t *testing.T) {
	s := New()

	data := map[string]any{"cute_pet_image_of_the_day": "https://files.example.com/cat.jpg"}
	job, err := s.CreateAutofillJob("DEMzWSwy3BI", data, "Autofilled Design")
	require.NoError(t, err)
	assert.Equal(t, "success", job["status"])

	created := job["result"].(map[string]any)["design"].(map[string]any)
	assert.Equal(t, "Autofilled Design", created["title"])

	// The filled design exists immediately.
	rec, err := s.GetDesign(created["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Autofilled Design", rec["title"])

	fetched, err := s.GetAutofillJob(job["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, job["id"], fetched["id"])

	_, err = s.CreateAutofillJob("unknown-template", data, "x")
	var nf *apierr.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCreateAutofillJobTitleFallback(t *testing.T) {
	s := New()

	before, err := s.ListDesigns(nil)
	require.NoError(t, err)

	job, err := s.CreateAutofillJob("DEMzWSwy3BI", map[string]any{}, "")
	require.NoError(t, err)
	created := job["result"].(map[string]any)["design"].(map[string]any)
	assert.Equal(t, "Advertisement Template", created["title"], "missing title falls back to the template title")

	after, err := s.ListDesigns(nil)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1, "autofill creates exactly one design")
}

func TestAssetUploadJobLifecycle(t *testing.T) {
	s := New()

	job, err := s.CreateAssetUploadJob(map[string]any{
		"name":          "My Awesome Upload",
		"tags":          []any{"image", "holiday"},
		"thumbnail_url": "https://files.example.com/thumb.png",
	})
	require.NoError(t, err)
	jobID := job["id"].(string)
	assert.Equal(t, "in_progress", job["status"])

	job, err = s.GetAssetUploadJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", job["status"])

	job, err = s.GetAssetUploadJob(jobID)
	require.NoError(t, err)
	require.Equal(t, "success", job["status"])

	asset := job["asset"].(map[string]any)
	assert.Equal(t, "My Awesome Upload", asset["name"])
	assert.Equal(t, []any{"image", "holiday"}, asset["tags"])
	assert.Equal(t, "https://files.example.com/thumb.png", asset["thumbnail"].(map[string]any)["url"])

	// The uploaded asset is a real asset afterwards.
	rec, err := s.GetAsset(asset["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "My Awesome Upload", rec["name"])
}

func TestAssetUploadJobFailurePath(t *testing.T) {
	s := New()

	job, err := s.CreateAssetUploadJob(map[string]any{"name": "fail:corrupt image"})
	require.NoError(t, err)
	jobID := job["id"].(string)

	s.GetAssetUploadJob(jobID)
	job, err = s.GetAssetUploadJob(jobID)
	require.NoError(t, err)
	assert.Equal(t, "failed", job["status"])
	assert.Equal(t, "upload_failed", job["error"].(map[string]any)["code"])
	_, hasAsset := job["asset"]
	assert.False(t, hasAsset)
}

func TestAssetUploadJobValidation(t *testing.T) {
	s := New()

	_, err := s.CreateAssetUploadJob(map[string]any{})
	var ve *apierr.ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Param)

	_, err = s.CreateAssetUploadJob(map[string]any{"name": "x", "tags": []any{"ok", 7}})
	var te *apierr.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tags", te.Param)

	_, err = s.CreateAssetUploadJob(map[string]any{"name": "x", "thumbnail_url": "ftp://nope"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "thumbnail_url", ve.Param)
}

func TestAssetCRUD(t *testing.T) {
	s := New()

	rec, err := s.GetAsset("Msd59349ff")
	require.NoError(t, err)
	assert.Equal(t, "My Awesome Upload", rec["name"])

	rec, err = s.UpdateAsset("Msd59349ff", map[string]any{
		"name": "Renamed Upload",
		"tags": []any{"image"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Upload", rec["name"])
	assert.Equal(t, []any{"image"}, rec["tags"])

	stored, ok := s.Store().Get("assets", "Msd59349ff")
	require.True(t, ok)
	assert.Equal(t, "Renamed Upload", stored["name"])

	require.NoError(t, s.DeleteAsset("Msd59349ff"))
	var nf *apierr.NotFoundError
	require.ErrorAs(t, s.DeleteAsset("Msd59349ff"), &nf)
	_, err = s.GetAsset("Msd59349ff")
	require.ErrorAs(t, err, &nf)
}
