// Package seedfile reads seed entries from a YAML or JSON file.
package seedfile

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/profile-harvester/internal/entity"
)

// document accepts either a bare list of entries or {seeds: [...]}.
type document struct {
	Seeds []entity.SeedEntry `yaml:"seeds"`
}

// Load reads path. JSON is a subset of YAML, so both formats share one decoder.
func Load(path string) ([]entity.SeedEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]entity.SeedEntry, error) {
	var entries []entity.SeedEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		var doc document
		if derr := yaml.Unmarshal(raw, &doc); derr != nil {
			return nil, fmt.Errorf("decode seed file: %w", err)
		}
		entries = doc.Seeds
	}

	var errs []error
	for i, e := range entries {
		if err := Validate(e); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks that the entry names at least one absolute http(s) URL.
func Validate(e entity.SeedEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	for _, raw := range []string{e.URL, e.SearchURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", raw, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid url %q: want an absolute http(s) url", raw)
		}
	}
	return nil
}
