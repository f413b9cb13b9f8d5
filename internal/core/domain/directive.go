package domain

// DirectiveKind3DView is the only directive kind currently emitted.
const DirectiveKind3DView = "3d_view"

// VisualDirective identifies a real-world entity the caller's rendering layer
// may choose to illustrate. The assistant only names the entity; resolving it
// to a renderable asset is the caller's concern.
type VisualDirective struct {
	Kind       string `json:"type"`
	EntityID   string `json:"model_id"`
	EntityType string `json:"model_type"`
	EntityName string `json:"model_name"`
	AssetPath  string `json:"asset_path,omitempty"`
	SafetyNote string `json:"safety_note,omitempty"`
}
