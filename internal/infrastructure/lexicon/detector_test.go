package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectKnownEntity(t *testing.T) {
	d := NewDetector(Default())

	directive := d.Detect("show me the AK-47")
	if directive == nil {
		t.Fatalf("expected directive")
	}
	if directive.EntityID != "ak47" {
		t.Fatalf("entity id = %q, want ak47", directive.EntityID)
	}
	if directive.EntityType != "weapon" {
		t.Fatalf("entity type = %q, want weapon", directive.EntityType)
	}
	if directive.EntityName != "AK-47 Assault Rifle" {
		t.Fatalf("entity name = %q, want AK-47 Assault Rifle", directive.EntityName)
	}
}

func TestDetectWithoutExplicitTrigger(t *testing.T) {
	d := NewDetector(Default())

	// Entity mention alone is sufficient; no "show me" required.
	directive := d.Detect("tank ammunition storage rules")
	if directive == nil {
		t.Fatalf("expected directive for bare entity mention")
	}
	if directive.EntityID != "t90" {
		t.Fatalf("entity id = %q, want t90", directive.EntityID)
	}
}

func TestDetectDeclarationOrderWins(t *testing.T) {
	d := NewDetector(Default())

	// "akm" contains no earlier alias; "ak-47" is declared before "ak47".
	directive := d.Detect("compare the akm variant")
	if directive == nil || directive.EntityName != "AKM Variant" {
		t.Fatalf("expected AKM Variant, got %+v", directive)
	}
}

func TestDetectNoEntity(t *testing.T) {
	d := NewDetector(Default())
	if directive := d.Detect("what is the mess hall schedule"); directive != nil {
		t.Fatalf("expected nil directive, got %+v", directive)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := "synonyms:\n  jeep: \"jeep vehicle transport\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lex.Synonyms["jeep"] == "" {
		t.Fatalf("expected custom synonym to survive")
	}
	if len(lex.Entities) == 0 || len(lex.Triggers) == 0 {
		t.Fatalf("expected default entities and triggers")
	}
}
