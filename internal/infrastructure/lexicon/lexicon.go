// Package lexicon holds the static domain vocabulary: the synonym table used
// for query expansion and the entity registry used for visual-intent
// detection. Both are loaded once at startup and never mutated afterwards.
package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entity maps one query alias to a canonical renderable entity. Entries are
// matched in declaration order, so more specific aliases must come first.
type Entity struct {
	Alias     string `yaml:"alias"`
	ID        string `yaml:"id"`
	Type      string `yaml:"type"`
	Name      string `yaml:"name"`
	AssetPath string `yaml:"asset_path"`
}

type Lexicon struct {
	Synonyms map[string]string `yaml:"synonyms"`
	Entities []Entity          `yaml:"entities"`
	Triggers []string          `yaml:"triggers"`
}

// Load reads a lexicon override from a YAML file. Sections left empty in the
// file fall back to the built-in defaults.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}

	defaults := Default()
	if len(lex.Synonyms) == 0 {
		lex.Synonyms = defaults.Synonyms
	}
	if len(lex.Entities) == 0 {
		lex.Entities = defaults.Entities
	}
	if len(lex.Triggers) == 0 {
		lex.Triggers = defaults.Triggers
	}
	return &lex, nil
}

// Default returns the built-in military vocabulary.
func Default() *Lexicon {
	return &Lexicon{
		Synonyms: map[string]string{
			"gun":            "gun weapon rifle firearm pistol arm",
			"guns":           "guns weapons rifles firearms pistols arms",
			"soldier":        "soldier personnel infantry troop",
			"communications": "communications comms signals radio",
			"tank":           "tank armor vehicle mb",
			"plane":          "plane aircraft jet fighter",
			"assemble":       "assemble build construct setup maintenance",
			"how":            "how procedure steps guide protocol",
		},
		Entities: []Entity{
			{Alias: "ak-47", ID: "ak47", Type: "weapon", Name: "AK-47 Assault Rifle", AssetPath: "/models/ak47/model.gltf"},
			{Alias: "ak47", ID: "ak47", Type: "weapon", Name: "AK-47 Assault Rifle", AssetPath: "/models/ak47/model.gltf"},
			{Alias: "akm", ID: "ak47", Type: "weapon", Name: "AKM Variant", AssetPath: "/models/ak47/model.gltf"},
			{Alias: "m4a1", ID: "m4a1", Type: "weapon", Name: "M4A1 Carbine", AssetPath: "/models/m4a1/model.gltf"},
			{Alias: "m4", ID: "m4a1", Type: "weapon", Name: "M4A1 Carbine", AssetPath: "/models/m4a1/model.gltf"},
			{Alias: "cheytac", ID: "dlq33", Type: "weapon", Name: "CheyTac M200 Intervention", AssetPath: "/models/dlq33/model.gltf"},
			{Alias: "dlq", ID: "dlq33", Type: "weapon", Name: "DLQ-33 Sniper", AssetPath: "/models/dlq33/model.gltf"},
			{Alias: "l96a1", ID: "l96a1", Type: "weapon", Name: "L96A1 Sniper", AssetPath: "/models/l96a1/model.gltf"},
			{Alias: "tank", ID: "t90", Type: "vehicle", Name: "T-90 Main Battle Tank", AssetPath: "/models/t90/model.gltf"},
			{Alias: "bunker", ID: "bunker", Type: "structure", Name: "Reinforced Bunker", AssetPath: "/models/bunker/model.gltf"},
		},
		Triggers: []string{
			"show me", "visual of", "3d model", "what does", "look like",
			"display", "render", "view", "visualize",
		},
	}
}
