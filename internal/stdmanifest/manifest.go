// Package stdmanifest validates the manifest.json file that gates whether
// a directory may be installed or updated as the standard library tree
// (spec §6.4). It intentionally does nothing beyond that one check: the
// git-based file sync that populates the tree is an external collaborator,
// not something this core performs.
package stdmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ExpectedName is the only value manifest.json's "name" field may hold.
const ExpectedName = "std"

// Manifest is the root of manifest.json. Only "name" is interpreted; any
// other keys present in the file are read by json.Unmarshal and ignored.
type Manifest struct {
	Name string `json:"name"`
}

// Validate reads and parses manifest.json at dir's root and checks that its
// "name" field equals ExpectedName. Any other value, a missing file, or a
// malformed document aborts with an error describing why.
func Validate(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stdmanifest: cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("stdmanifest: %s is not valid JSON: %w", path, err)
	}

	if m.Name != ExpectedName {
		return nil, fmt.Errorf("stdmanifest: %s has name %q, expected %q", path, m.Name, ExpectedName)
	}

	return &m, nil
}
