package masking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKubernetesSecretMaskerAppliesTo(t *testing.T) {
	m := &KubernetesSecretMasker{}

	tests := []struct {
		name string
		data string
		want bool
	}{
		{name: "yaml secret", data: "apiVersion: v1\nkind: Secret\ndata:\n  key: dmFsdWU=", want: true},
		{name: "json secret", data: `{"kind": "Secret", "data": {"key": "dmFsdWU="}}`, want: true},
		{name: "configmap", data: "apiVersion: v1\nkind: ConfigMap\ndata:\n  key: value", want: false},
		{name: "secret mentioned in text", data: "the secret is stored in a Secret manager", want: false},
		{name: "no secret at all", data: "kind: Pod", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.AppliesTo(tt.data))
		})
	}
}

func TestMaskYAMLSecret(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := `apiVersion: v1
kind: Secret
metadata:
  name: api-credentials
data:
  api-token: dG9rZW4tdmFsdWU=
stringData:
  plaintext: raw-secret-value
`
	masked := m.Mask(input)

	assert.NotContains(t, masked, "dG9rZW4tdmFsdWU=")
	assert.NotContains(t, masked, "raw-secret-value")
	assert.Contains(t, masked, MaskedSecretValue)
	assert.Contains(t, masked, "api-credentials")
}

func TestMaskYAMLMultiDocument(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := `kind: Secret
metadata:
  name: first
data:
  password: c2VjcmV0MQ==
---
kind: ConfigMap
metadata:
  name: app-config
data:
  log_level: debug
`
	masked := m.Mask(input)

	assert.NotContains(t, masked, "c2VjcmV0MQ==")
	// ConfigMap data is untouched
	assert.Contains(t, masked, "log_level")
	assert.Contains(t, masked, "debug")
}

func TestMaskYAMLList(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := `apiVersion: v1
kind: List
items:
  - kind: Secret
    metadata:
      name: creds
    data:
      token: dG9rZW4=
  - kind: ConfigMap
    metadata:
      name: settings
    data:
      mode: fast
`
	masked := m.Mask(input)

	assert.NotContains(t, masked, "dG9rZW4=")
	assert.Contains(t, masked, "mode")
	assert.Contains(t, masked, "fast")
}

func TestMaskJSONSecret(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := `{"kind": "Secret", "metadata": {"name": "creds"}, "data": {"password": "cGFzcw=="}}`
	masked := m.Mask(input)

	require.NotEqual(t, input, masked)
	assert.NotContains(t, masked, "cGFzcw==")
	assert.Contains(t, masked, MaskedSecretValue)

	// Output stays valid JSON
	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(masked), &parsed))
}

func TestMaskAnnotationWithEmbeddedSecret(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := `kind: Secret
metadata:
  name: creds
  annotations:
    kubectl.kubernetes.io/last-applied-configuration: '{"kind":"Secret","data":{"password":"aHVudGVyMg=="}}'
data:
  password: aHVudGVyMg==
`
	masked := m.Mask(input)

	assert.NotContains(t, masked, "aHVudGVyMg==")
}

func TestMaskReturnsOriginalOnParseError(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := "kind: Secret\ndata: [unbalanced"
	assert.Equal(t, input, m.Mask(input))
}

func TestMaskLeavesNonSecretsUntouched(t *testing.T) {
	m := &KubernetesSecretMasker{}

	input := "kind: ConfigMap\ndata:\n  key: value\n"
	assert.Equal(t, input, m.Mask(input))
}
