package categories

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveIsCaseInsensitiveAndTrims(t *testing.T) {
	reg, err := NewRegistry([]Entry{
		{Key: "verzorging", UpstreamID: "12442", FallbackTerm: "scheerapparaat", DisplayName: "Persoonlijke verzorging"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	for _, key := range []string{"verzorging", "VERZORGING", "  Verzorging  "} {
		entry, ok := reg.Resolve(key)
		if !ok {
			t.Fatalf("Resolve(%q) not found", key)
		}
		if entry.UpstreamID != "12442" {
			t.Fatalf("Resolve(%q) upstream id = %s", key, entry.UpstreamID)
		}
	}

	if _, ok := reg.Resolve("onbekend"); ok {
		t.Fatalf("expected unknown key to miss")
	}
}

func TestKeysPreserveInsertionOrder(t *testing.T) {
	reg, err := NewRegistry([]Entry{
		{Key: "c", FallbackTerm: "cc"},
		{Key: "a", FallbackTerm: "aa"},
		{Key: "b", FallbackTerm: "bb"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	keys := reg.Keys()
	want := []string{"c", "a", "b"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestNewRegistryRejectsDuplicateKeys(t *testing.T) {
	_, err := NewRegistry([]Entry{
		{Key: "dubbel", FallbackTerm: "een"},
		{Key: "Dubbel", FallbackTerm: "twee"},
	})
	if err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestNewRegistryRequiresFallbackTerm(t *testing.T) {
	_, err := NewRegistry([]Entry{{Key: "zonder-term"}})
	if err == nil {
		t.Fatalf("expected validation error for missing fallback_term")
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "categories.yaml")
	content := `
categories:
  - key: verzorging
    upstream_id: "12442"
    fallback_term: scheerapparaat
    display_name: Persoonlijke verzorging
  - key: airfryers
    fallback_term: airfryer
`
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write categories file: %v", err)
	}

	reg, err := LoadFile(file)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", reg.Len())
	}

	entry, ok := reg.Resolve("airfryers")
	if !ok {
		t.Fatalf("expected airfryers to be loaded")
	}
	if entry.UpstreamID != "" {
		t.Fatalf("airfryers should have no upstream id, got %s", entry.UpstreamID)
	}
	if entry.DisplayName != "airfryers" {
		t.Fatalf("display name should default to key, got %s", entry.DisplayName)
	}
}

func TestDefaultRegistryIsValid(t *testing.T) {
	reg := Default()
	if reg.Len() == 0 {
		t.Fatalf("default registry is empty")
	}

	entry, ok := reg.Resolve("verzorging")
	if !ok {
		t.Fatalf("default registry missing verzorging")
	}
	if entry.UpstreamID != "12442" || entry.FallbackTerm != "scheerapparaat" {
		t.Fatalf("unexpected verzorging entry: %#v", entry)
	}
}
