package index

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/detagtor/detagtor/internal/fingerprint"
)

// Encode writes the index as indented JSON. Key order is not significant;
// a decode of the output reproduces the exact tag set and per-tag
// path-to-fingerprint mappings.
func (idx *Index) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return nil
}

// Decode reads a previously encoded index. Any malformed document, schema
// mismatch or invalid fingerprint yields ErrIndexFormat: a detect run
// must not proceed on a partially understood knowledge base.
func Decode(r io.Reader) (*Index, error) {
	var idx Index
	dec := json.NewDecoder(r)
	if err := dec.Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexFormat, err)
	}
	if idx.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrIndexFormat, idx.Version)
	}
	if idx.Tags == nil {
		idx.Tags = make(map[string]FileSet)
	}
	for tag, files := range idx.Tags {
		for path, fp := range files {
			if !fingerprint.Valid(fp) {
				return nil, fmt.Errorf("%w: invalid fingerprint for %q at tag %q", ErrIndexFormat, path, tag)
			}
		}
	}
	return &idx, nil
}

// Load decodes an index from a file on disk.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
