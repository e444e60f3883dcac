package masking

// Masker is the interface for code-based maskers that need structural
// awareness beyond regex matching, e.g. parsing YAML/JSON to mask Kubernetes
// Secrets but not ConfigMaps.
type Masker interface {
	// Name is the identifier pattern groups reference.
	Name() string

	// AppliesTo is a cheap pre-check (string contains, not parsing).
	AppliesTo(data string) bool

	// Mask applies masking. Must return the original data on parse errors.
	Mask(data string) string
}
