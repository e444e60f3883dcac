package masking

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaskedSecretValue replaces masked Kubernetes Secret data values.
const MaskedSecretValue = "[MASKED_SECRET_DATA]"

var (
	yamlSecretPattern = regexp.MustCompile(`(?m)^kind:\s*Secret\s*$`)
	jsonSecretPattern = regexp.MustCompile(`"kind"\s*:\s*"Secret"`)
)

// KubernetesSecretMasker masks data/stringData fields in Kubernetes Secret
// resources while leaving ConfigMaps and other kinds untouched. Handles
// single resources, Lists, and multi-document YAML.
type KubernetesSecretMasker struct{}

func (m *KubernetesSecretMasker) Name() string { return "kubernetes_secret" }

func (m *KubernetesSecretMasker) AppliesTo(data string) bool {
	if !strings.Contains(data, "Secret") {
		return false
	}
	return yamlSecretPattern.MatchString(data) || jsonSecretPattern.MatchString(data)
}

// Mask detects JSON vs YAML and applies the matching parser. Returns the
// original data on parse errors.
func (m *KubernetesSecretMasker) Mask(data string) string {
	trimmed := strings.TrimSpace(data)

	// JSON first when input looks like JSON, so the YAML parser doesn't
	// consume it and re-serialize as YAML.
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if masked := m.maskJSON(data); masked != data {
			return masked
		}
	}

	if masked := m.maskYAML(data); masked != data {
		return masked
	}

	return data
}

// maskYAML parses multi-document YAML and masks Secret resources.
func (m *KubernetesSecretMasker) maskYAML(data string) string {
	decoder := yaml.NewDecoder(strings.NewReader(data))
	var documents []map[string]any
	anySecret := false

	for {
		var doc map[string]any
		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return data
		}
		if doc == nil {
			continue
		}
		if maskResource(doc) {
			anySecret = true
		}
		documents = append(documents, doc)
	}

	if !anySecret || len(documents) == 0 {
		return data
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	for _, doc := range documents {
		if err := encoder.Encode(doc); err != nil {
			return data
		}
	}
	if err := encoder.Close(); err != nil {
		return data
	}

	// yaml.Encoder always adds a trailing newline; match the original
	result := strings.TrimRight(buf.String(), "\n")
	if strings.HasSuffix(data, "\n") {
		result += "\n"
	}
	return result
}

// maskJSON parses a JSON object and masks Secret resources.
func (m *KubernetesSecretMasker) maskJSON(data string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return data
	}

	if !maskResource(obj) {
		return data
	}

	result, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return data
	}

	output := string(result)
	if strings.HasSuffix(data, "\n") {
		output += "\n"
	}
	return output
}

// maskResource masks a parsed resource in place. Handles single Secrets and
// any *List kind containing Secret items. Reports whether anything was masked.
func maskResource(resource map[string]any) bool {
	if isKubernetesSecret(resource) {
		maskSecretFields(resource)
		maskAnnotationSecrets(resource)
		return true
	}
	if !isKubernetesList(resource) {
		return false
	}

	items, _ := resource["items"].([]any)
	anyMasked := false
	for _, item := range items {
		itemMap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if isKubernetesSecret(itemMap) {
			maskSecretFields(itemMap)
			maskAnnotationSecrets(itemMap)
			anyMasked = true
		}
	}
	return anyMasked
}

func isKubernetesSecret(resource map[string]any) bool {
	kind, ok := resource["kind"].(string)
	return ok && (kind == "Secret" || kind == "SecretList")
}

func isKubernetesList(resource map[string]any) bool {
	kind, ok := resource["kind"].(string)
	return ok && strings.HasSuffix(kind, "List")
}

// maskSecretFields replaces values in "data" and "stringData" with the
// masked placeholder.
func maskSecretFields(resource map[string]any) {
	if kind, _ := resource["kind"].(string); kind == "SecretList" {
		items, _ := resource["items"].([]any)
		for _, item := range items {
			if itemMap, ok := item.(map[string]any); ok {
				maskSecretDataMaps(itemMap)
			}
		}
		return
	}
	maskSecretDataMaps(resource)
}

func maskSecretDataMaps(resource map[string]any) {
	for _, field := range []string{"data", "stringData"} {
		dataMap, ok := resource[field].(map[string]any)
		if !ok {
			continue
		}
		for key := range dataMap {
			dataMap[key] = MaskedSecretValue
		}
	}
}

// maskAnnotationSecrets handles Secret data embedded in annotations, e.g.
// kubectl.kubernetes.io/last-applied-configuration.
func maskAnnotationSecrets(resource map[string]any) {
	metadata, ok := resource["metadata"].(map[string]any)
	if !ok {
		return
	}
	annotations, ok := metadata["annotations"].(map[string]any)
	if !ok {
		return
	}

	for key, val := range annotations {
		strVal, ok := val.(string)
		if !ok || !strings.Contains(strVal, "Secret") {
			continue
		}

		var embedded map[string]any
		if err := json.Unmarshal([]byte(strVal), &embedded); err != nil {
			continue
		}
		if !isKubernetesSecret(embedded) {
			continue
		}

		maskSecretFields(embedded)
		masked, err := json.Marshal(embedded)
		if err != nil {
			continue
		}
		annotations[key] = string(masked)
	}
}
