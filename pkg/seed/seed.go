// Package seed loads seed datasets and snapshot documents from disk,
// validating them against a store meta-schema before any store mutation.
// A malformed document is rejected wholesale; the store never sees a
// partially-applied seed.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

// metaSchema constrains the document shape: collections of records, each
// record an object. Record contents are free-form; per-resource semantics
// are enforced by the validation layer at request time, not at load time.
const metaSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "additionalProperties": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1}
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("seed-schema.json", strings.NewReader(metaSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = compiler.Compile("seed-schema.json")
	})
	return compiled, compileErr
}

// Validate checks a decoded document against the store meta-schema.
// Violations come back as a *apierr.SchemaError naming the offending
// location.
func Validate(doc map[string]any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("compiling seed meta-schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := leafCause(ve)
			return &apierr.SchemaError{
				Path:    strings.TrimPrefix(leaf.InstanceLocation, "/"),
				Message: leaf.Message,
			}
		}
		return err
	}
	return nil
}

// leafCause digs to the most specific violation so the reported path
// points at the actual offending record, not the document root.
func leafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// Load reads a seed file (JSON, or YAML for .yaml/.yml paths), validates
// it, and returns it as a store snapshot. Unlike snapshot loading, a
// missing seed file is an error: seeds are named explicitly by the
// caller.
func Load(path string) (store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	return Parse(data, strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"))
}

// Parse decodes and validates seed bytes.
func Parse(data []byte, isYAML bool) (store.Snapshot, error) {
	snap, err := store.DecodeSnapshot(data, isYAML)
	if err != nil {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}

	// Validate the generic document form, not the typed snapshot, so the
	// meta-schema sees exactly what was written.
	doc := make(map[string]any, len(snap))
	for name, c := range snap {
		cc := make(map[string]any, len(c))
		for id, r := range c {
			cc[id] = map[string]any(r)
		}
		doc[name] = cc
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return snap, nil
}

// Apply loads the seed at path into the store, replacing its contents.
// The store is untouched when loading or validation fails.
func Apply(s *store.Store, path string) error {
	snap, err := Load(path)
	if err != nil {
		return err
	}
	s.Reset(snap)
	return nil
}

// MarshalExample renders a snapshot as indented JSON, used by the CLI to
// print template seed documents.
func MarshalExample(snap store.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}
