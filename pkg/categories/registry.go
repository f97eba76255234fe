package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Package categories holds the static mapping from internal category keys to
// upstream numeric category ids, free-text fallback search phrases, and
// display names.

// Entry is one registered category. UpstreamID may be empty for categories
// known only by their search term.
type Entry struct {
	Key          string `json:"key" yaml:"key"`
	UpstreamID   string `json:"upstream_id" yaml:"upstream_id"`
	FallbackTerm string `json:"fallback_term" yaml:"fallback_term"`
	DisplayName  string `json:"display_name" yaml:"display_name"`
}

type registryFile struct {
	Categories []Entry `json:"categories" yaml:"categories"`
}

// Registry is a pure lookup table, loaded once at startup. Lookup is
// case-insensitive and trims whitespace; iteration order is insertion order.
type Registry struct {
	entries []Entry
	idx     map[string]int
}

// NewRegistry builds a registry from the given entries.
func NewRegistry(entries []Entry) (*Registry, error) {
	reg := &Registry{
		entries: make([]Entry, 0, len(entries)),
		idx:     make(map[string]int, len(entries)),
	}
	for i, raw := range entries {
		entry := sanitizeEntry(raw)
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("category[%d]: %w", i, err)
		}
		key := normalizeKey(entry.Key)
		if _, exists := reg.idx[key]; exists {
			return nil, fmt.Errorf("duplicate category key %q", entry.Key)
		}
		reg.idx[key] = len(reg.entries)
		reg.entries = append(reg.entries, entry)
	}
	return reg, nil
}

// LoadFile loads a registry from a YAML or JSON categories file.
func LoadFile(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("categories file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open categories file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	parsed, err := parseRegistryFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Categories) == 0 {
		return nil, errors.New("categories file contains no categories entries")
	}

	return NewRegistry(parsed.Categories)
}

// Resolve returns the entry for the given key.
func (r *Registry) Resolve(key string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	i, ok := r.idx[normalizeKey(key)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Keys returns the registered category keys in insertion order. This is the
// default import order.
func (r *Registry) Keys() []string {
	if r == nil || len(r.entries) == 0 {
		return nil
	}
	keys := make([]string, len(r.entries))
	for i, entry := range r.entries {
		keys[i] = entry.Key
	}
	return keys
}

// All returns a copy of all registered entries in insertion order.
func (r *Registry) All() []Entry {
	if r == nil || len(r.entries) == 0 {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func sanitizeEntry(e Entry) Entry {
	e.Key = strings.TrimSpace(e.Key)
	e.UpstreamID = strings.TrimSpace(e.UpstreamID)
	e.FallbackTerm = strings.TrimSpace(e.FallbackTerm)
	e.DisplayName = strings.TrimSpace(e.DisplayName)
	if e.DisplayName == "" {
		e.DisplayName = e.Key
	}
	return e
}

func validateEntry(e Entry) error {
	if e.Key == "" {
		return errors.New("key is required")
	}
	if e.FallbackTerm == "" {
		return fmt.Errorf("fallback_term is required for category %q", e.Key)
	}
	return nil
}

func parseRegistryFile(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yamlUnmarshal},
		{name: "yaml", ext: ".yml", fn: yamlUnmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var parsed registryFile
		if err := d.fn(data, &parsed); err == nil {
			return parsed, nil
		}
	}

	return registryFile{}, errors.New("categories file format not recognized (expected YAML or JSON)")
}

func yamlUnmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
