package api

// ModelInfo describes an assistant model the backend serves.
type ModelInfo struct {
	Name        string
	Description string
}

// Known models
var (
	ModelGPT4o = ModelInfo{
		Name:        "qa-gpt-4o",
		Description: "Default support assistant, best answer quality",
	}
	ModelGPT4oMini = ModelInfo{
		Name:        "qa-gpt-4o-mini",
		Description: "Faster and cheaper, shorter answers",
	}
)

// AllModels returns the models known to this client. The backend may
// accept others; unknown names are passed through unchanged.
func AllModels() []ModelInfo {
	return []ModelInfo{ModelGPT4o, ModelGPT4oMini}
}

// IsKnownModel reports whether name matches a model in the catalog.
func IsKnownModel(name string) bool {
	for _, m := range AllModels() {
		if m.Name == name {
			return true
		}
	}
	return false
}
