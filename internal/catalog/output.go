package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Output file names written by WriteJSON.
const (
	CirclesFile = "circles.json"
	FandomsFile = "fandoms.json"
	StandsFile  = "stands.json"
)

// WriteJSON writes the result's circles, fandoms and stands to dir, one
// file each, creating dir if needed.
func WriteJSON(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	files := []struct {
		name string
		v    any
	}{
		{CirclesFile, orEmpty(res.Circles)},
		{FandomsFile, orEmpty(res.Fandoms)},
		{StandsFile, orEmpty(res.Stands)},
	}
	for _, f := range files {
		if err := writeJSONFile(filepath.Join(dir, f.name), f.v); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// orEmpty keeps empty outputs serialized as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
