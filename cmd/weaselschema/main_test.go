package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteSchemas(t *testing.T) {
	dir := t.TempDir()
	for name, schema := range buildSchemas() {
		if err := writeSchema(filepath.Join(dir, name), schema); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "manifest.schema.json"))
	if err != nil {
		t.Fatalf("read manifest schema: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode manifest schema: %v", err)
	}
	if doc["title"] != "Full Weasel Asset Manifest" {
		t.Fatalf("title %v", doc["title"])
	}
	if _, err := os.Stat(filepath.Join(dir, "snapshot.schema.json")); err != nil {
		t.Fatalf("snapshot schema missing: %v", err)
	}
}
