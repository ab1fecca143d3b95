package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Variant is one compiled variant in the atlas.
type Variant struct {
	Defines []string `json:"defines"`
	File    string   `json:"file"`
}

// AtlasEntry lists the variants of one shader source, keyed by variant hash.
type AtlasEntry struct {
	Variants map[string]Variant `json:"variants"`
}

var ErrInvalidAtlas = errors.New("atlas file is not valid")

// LoadVariants reads the define lists of a variants file:
//
//	{"variants": [{"defines": ["A=1", "B"]}, {"defines": []}]}
//
// Entries without a defines array are skipped; a file without a variants
// array has no variants.
func LoadVariants(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read variants: %w", err)
	}
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("unable to parse variants %s: invalid json", path)
	}

	list := gjson.GetBytes(content, "variants")
	if !list.IsArray() {
		return nil, nil
	}

	var variants [][]string
	for i, v := range list.Array() {
		defines := v.Get("defines")
		if !defines.IsArray() {
			log.WithField("file", path).WithField("index", i).Warn("skipping variant without defines")
			continue
		}
		d := []string{}
		for _, def := range defines.Array() {
			d = append(d, def.String())
		}
		variants = append(variants, d)
	}
	return variants, nil
}

// MergeAtlas adds entries to the atlas at path, replacing entries for the
// same sources. An unreadable atlas is started over; an atlas that is valid
// JSON but not an object is an error.
func MergeAtlas(path string, entries map[string]AtlasEntry) error {
	atlas := map[string]jsontext.Value{}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create atlas directory: %w", err)
		}
	case err != nil:
		return fmt.Errorf("unable to read atlas: %w", err)
	case jsontext.Value(content).IsValid():
		if jsontext.Value(content).Kind() != '{' {
			return ErrInvalidAtlas
		}
		if err := json.Unmarshal(content, &atlas); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAtlas, err)
		}
	default:
		log.WithField("file", path).Warn("atlas is not valid json, starting over")
	}

	for source, entry := range entries {
		value, err := json.Marshal(entry, json.Deterministic(true))
		if err != nil {
			return fmt.Errorf("encode atlas entry %s: %w", source, err)
		}
		atlas[source] = value
	}

	out, err := json.Marshal(atlas, json.Deterministic(true), jsontext.WithIndent("    "))
	if err != nil {
		return fmt.Errorf("encode atlas: %w", err)
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("unable to write atlas: %w", err)
	}
	return nil
}
