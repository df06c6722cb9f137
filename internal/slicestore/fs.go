package slicestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/classlens/growthreport/internal/roster"
)

const indexFile = "index.json"

// FSStore keeps the artifacts as plain JSON files under one directory:
// index.json plus one <slicekey>.json per school. This is the layout a
// static web host serves directly.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Index(_ context.Context) (Index, error) {
	b, err := os.ReadFile(filepath.Join(s.base, indexFile))
	if err != nil {
		return nil, fmt.Errorf("slicestore: read index: %w", err)
	}
	var idx Index
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, fmt.Errorf("slicestore: decode index: %w", err)
	}
	return idx, nil
}

func (s *FSStore) Slice(_ context.Context, term, district, school string) ([]roster.Record, error) {
	name := SliceKey(term, district, school) + ".json"
	b, err := os.ReadFile(filepath.Join(s.base, name))
	if err != nil {
		return nil, fmt.Errorf("slicestore: read slice %s: %w", name, err)
	}
	var recs []roster.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("slicestore: decode slice %s: %w", name, err)
	}
	return recs, nil
}

func (s *FSStore) PutIndex(_ context.Context, idx Index) error {
	return s.writeJSON(indexFile, idx)
}

func (s *FSStore) PutSlice(_ context.Context, term, district, school string, records []roster.Record) error {
	return s.writeJSON(SliceKey(term, district, school)+".json", records)
}

func (s *FSStore) Close() error { return nil }

func (s *FSStore) writeJSON(name string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("slicestore: encode %s: %w", name, err)
	}
	dst := filepath.Join(s.base, filepath.Clean(name))
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return fmt.Errorf("slicestore: write %s: %w", name, err)
	}
	return nil
}
