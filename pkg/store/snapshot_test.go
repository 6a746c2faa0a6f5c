package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func roundTripSeed() Snapshot {
	return Snapshot{
		"designs": {
			"DAF001": {
				"id":    "DAF001",
				"title": "Alpha",
				"owner": map[string]any{"user_id": "u1"},
				"pages": []any{
					map[string]any{"index": float64(1)},
					map[string]any{"index": float64(2)},
				},
			},
		},
		"folders": {},
	}
}

func TestSnapshotRoundTripJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s := New(roundTripSeed())
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := New(nil)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Export(), s.Export()) {
		t.Error("round trip changed the snapshot")
	}
	// Empty collections survive the trip.
	if loaded.List("folders") != nil || loaded.Len("folders") != 0 {
		t.Error("expected empty folders collection")
	}
}

func TestSnapshotRoundTripYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")

	s := New(roundTripSeed())
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := New(nil)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(loaded.Export(), s.Export()) {
		t.Error("YAML round trip changed the snapshot")
	}
}

func TestLoadMissingFileIsNoOp(t *testing.T) {
	s := New(roundTripSeed())
	before := s.Export()

	if err := s.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !reflect.DeepEqual(s.Export(), before) {
		t.Error("missing file load must leave the store unchanged")
	}
}

func TestLoadCorruptFileErrorsAndPreservesState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(roundTripSeed())
	before := s.Export()
	if err := s.Load(path); err == nil {
		t.Fatal("expected decode error")
	}
	if !reflect.DeepEqual(s.Export(), before) {
		t.Error("failed load must leave the store untouched")
	}
}

func TestLoadReplacesWholesale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	New(Snapshot{"orders": {"1001": {"id": "1001"}}}).Save(path)

	s := New(roundTripSeed())
	if err := s.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Len("designs") != 0 {
		t.Error("load must replace prior collections, not merge")
	}
	if s.Len("orders") != 1 {
		t.Error("expected loaded orders collection")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := New(roundTripSeed()).Save(path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "state.json" {
		t.Errorf("expected only state.json in %s, got %v", dir, entries)
	}
}
