package relation

import (
	"reflect"
	"testing"

	"github.com/apisim/apisim/pkg/store"
)

func supplierStore() *store.Store {
	return store.New(store.Snapshot{
		"suppliers": {
			"7": {
				"id":              "7",
				"name":            "Acme Industrial",
				"payment_term_id": "net30",
				"attachment_ids":  []any{"att1", "att9", "att2"},
			},
		},
		"payment_terms": {
			"net30": {"id": "net30", "name": "Net 30"},
		},
		"attachments": {
			"att1": {"id": "att1", "filename": "w9.pdf"},
			"att2": {"id": "att2", "filename": "contract.pdf"},
		},
	})
}

func supplierRelations() Map {
	return Map{
		"payment_term":          {Target: "payment_terms", Field: "payment_term_id"},
		"attachments":           {Target: "attachments", Field: "attachment_ids", Many: true},
		"docusign_envelopes":    {Placeholder: true},
		"adobe_sign_agreements": {Placeholder: true},
	}
}

func supplier(t *testing.T, s *store.Store) store.Record {
	t.Helper()
	r, ok := s.Get("suppliers", "7")
	if !ok {
		t.Fatal("seed supplier missing")
	}
	return r
}

func TestResolveToOne(t *testing.T) {
	s := supplierStore()
	rels, included := supplierRelations().Resolve(s, supplier(t, s), []string{"payment_term"})

	want := map[string]any{"data": map[string]any{"type": "payment_terms", "id": "net30"}}
	if !reflect.DeepEqual(rels["payment_term"], want) {
		t.Errorf("unexpected relationship: %#v", rels["payment_term"])
	}
	if len(included) != 1 || included[0]["name"] != "Net 30" {
		t.Errorf("expected payment term included, got %v", included)
	}
}

func TestResolveToManyDropsDanglingIDs(t *testing.T) {
	s := supplierStore()
	rels, included := supplierRelations().Resolve(s, supplier(t, s), []string{"attachments"})

	data := rels["attachments"].(map[string]any)["data"].([]any)
	// att9 does not exist; the other two survive in list order.
	if len(data) != 2 {
		t.Fatalf("expected 2 linked attachments, got %v", data)
	}
	if data[0].(map[string]any)["id"] != "att1" || data[1].(map[string]any)["id"] != "att2" {
		t.Errorf("unexpected attachment order: %v", data)
	}
	if len(included) != 2 {
		t.Errorf("expected 2 included records, got %d", len(included))
	}
}

func TestPlaceholderAlwaysEmpty(t *testing.T) {
	s := supplierStore()
	rels, included := supplierRelations().Resolve(s, supplier(t, s), []string{"docusign_envelopes", "adobe_sign_agreements"})

	for _, name := range []string{"docusign_envelopes", "adobe_sign_agreements"} {
		got := rels[name].(map[string]any)["data"].([]any)
		if len(got) != 0 {
			t.Errorf("%s must always be empty, got %v", name, got)
		}
	}
	if included != nil {
		t.Error("placeholders contribute nothing to included")
	}
}

func TestDanglingToOneOmitsKey(t *testing.T) {
	s := supplierStore()
	s.Delete("payment_terms", "net30")

	rels, included := supplierRelations().Resolve(s, supplier(t, s), []string{"payment_term"})
	if rels != nil {
		t.Errorf("dangling to-one must omit the key entirely, got %v", rels)
	}
	if included != nil {
		t.Errorf("nothing to include, got %v", included)
	}
}

func TestMissingFKFieldOmitsKey(t *testing.T) {
	s := supplierStore()
	r := store.Record{"id": "8", "name": "No Links"}
	rels, _ := supplierRelations().Resolve(s, r, []string{"payment_term", "attachments"})
	if rels != nil {
		t.Errorf("record without fk fields resolves to no relationships, got %v", rels)
	}
}

func TestUnknownIncludeNameSkipped(t *testing.T) {
	s := supplierStore()
	rels, _ := supplierRelations().Resolve(s, supplier(t, s), []string{"unknown_thing", "payment_term"})
	if len(rels) != 1 {
		t.Errorf("unknown include names are skipped, got %v", rels)
	}
}

func TestEmptyIncludesResolveNothing(t *testing.T) {
	s := supplierStore()
	rels, included := supplierRelations().Resolve(s, supplier(t, s), nil)
	if rels != nil || included != nil {
		t.Error("no includes requested means no resolution work")
	}
}

func TestIncludedRecordsAreDetached(t *testing.T) {
	s := supplierStore()
	_, included := supplierRelations().Resolve(s, supplier(t, s), []string{"payment_term"})
	included[0]["name"] = "mutated"

	fresh, _ := s.Get("payment_terms", "net30")
	if fresh["name"] != "Net 30" {
		t.Error("included records must not alias store data")
	}
}
