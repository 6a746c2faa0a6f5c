package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save writes the full store state to path. The format follows the file
// extension: ".yaml" and ".yml" write YAML, everything else writes
// indented JSON. The file is written to a temp sibling and renamed into
// place, so a crash mid-write never leaves a truncated snapshot.
func (s *Store) Save(path string) error {
	snap := s.Export()

	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = yaml.Marshal(snap)
	} else {
		data, err = json.MarshalIndent(snap, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load replaces the store contents wholesale with the snapshot at path.
// A missing file is a no-op returning nil: the store keeps its current
// state. Any other read or decode failure is returned and the store is
// left untouched.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	snap, err := DecodeSnapshot(data, isYAMLPath(path))
	if err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	s.Reset(snap)
	return nil
}

// DecodeSnapshot parses snapshot bytes into a Snapshot. YAML documents
// are normalized to the same scalar types encoding/json produces, so a
// store loaded from YAML behaves identically to one loaded from JSON.
func DecodeSnapshot(data []byte, isYAML bool) (Snapshot, error) {
	if isYAML {
		var raw map[string]map[string]map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		snap := make(Snapshot, len(raw))
		for name, c := range raw {
			cc := make(Collection, len(c))
			for id, r := range c {
				cc[id] = normalizeValue(r).(map[string]any)
			}
			snap[name] = cc
		}
		return snap, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// normalizeValue rewrites YAML scalar types into their JSON equivalents:
// ints become float64 and map keys are forced to strings.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprintf("%v", k)] = normalizeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
