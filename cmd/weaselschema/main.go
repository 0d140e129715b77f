// Command weaselschema writes JSON schemas for the asset manifest and the
// snapshot payload so front-end tooling can validate against them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/fullweasel/server/internal/assets"
	"github.com/fullweasel/server/internal/world"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas into")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	for name, schema := range buildSchemas() {
		if err := writeSchema(filepath.Join(outDir, name), schema); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}

	manifest := reflector.Reflect(new(assets.Manifest))
	manifest.Title = "Full Weasel Asset Manifest"
	manifest.Description = "Sprite roles, background videos with PNG fallback, and music tracks."

	snapshot := reflector.Reflect(new(world.Snapshot))
	snapshot.Title = "Full Weasel Snapshot"
	snapshot.Description = "Read-only game view in screen percentages, origin top-left, +x right, +y down."

	return map[string]*jsonschema.Schema{
		"manifest.schema.json": manifest,
		"snapshot.schema.json": snapshot,
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}
	return nil
}
