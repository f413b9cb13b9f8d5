package lexicon

import (
	"log/slog"
	"strings"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

const safetyNote = "This model is for educational/visualization use only; operational details withheld."

// Detector scans queries for known entity mentions and explicit visual
// phrasing ("show me", "render", ...).
type Detector struct {
	entities []Entity
	triggers []string
}

func NewDetector(lex *Lexicon) *Detector {
	return &Detector{entities: lex.Entities, triggers: lex.Triggers}
}

// Detect returns a visual directive when the query mentions a known entity.
// Explicit trigger phrases are evaluated and logged, but an entity mention
// alone is enough: mentioning hardware is taken as wanting to see it.
func (d *Detector) Detect(query string) *domain.VisualDirective {
	lower := strings.ToLower(query)

	explicit := false
	for _, trigger := range d.triggers {
		if strings.Contains(lower, trigger) {
			explicit = true
			break
		}
	}

	for _, entity := range d.entities {
		if !strings.Contains(lower, entity.Alias) {
			continue
		}
		slog.Info("visual_intent_detected",
			"entity", entity.Name,
			"explicit_trigger", explicit,
		)
		return &domain.VisualDirective{
			Kind:       domain.DirectiveKind3DView,
			EntityID:   entity.ID,
			EntityType: entity.Type,
			EntityName: entity.Name,
			AssetPath:  entity.AssetPath,
			SafetyNote: safetyNote,
		}
	}
	return nil
}
