package controller

import (
	"reflect"
	"testing"
)

func TestParseActionInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "empty input",
			input: "",
			want:  map[string]any{},
		},
		{
			name:  "whitespace only",
			input: "   \n  ",
			want:  map[string]any{},
		},
		{
			name:  "json object",
			input: `{"resource": "pods", "namespace": "default"}`,
			want:  map[string]any{"resource": "pods", "namespace": "default"},
		},
		{
			name:  "json object with number",
			input: `{"replicas": 3}`,
			want:  map[string]any{"replicas": float64(3)},
		},
		{
			name:  "json array wrapped",
			input: `["a", "b"]`,
			want:  map[string]any{"input": []any{"a", "b"}},
		},
		{
			name:  "json string wrapped",
			input: `"just a string"`,
			want:  map[string]any{"input": "just a string"},
		},
		{
			name:  "json number wrapped",
			input: `42`,
			want:  map[string]any{"input": float64(42)},
		},
		{
			name:  "yaml with nested map",
			input: "namespace: default\nselector:\n  app: web",
			want: map[string]any{
				"namespace": "default",
				"selector":  map[string]any{"app": "web"},
			},
		},
		{
			name:  "yaml with list value",
			input: "containers:\n  - web\n  - sidecar",
			want:  map[string]any{"containers": []any{"web", "sidecar"}},
		},
		{
			name:  "colon pairs with coercion",
			input: "namespace: default, replicas: 3",
			want:  map[string]any{"namespace": "default", "replicas": int64(3)},
		},
		{
			name:  "equals pairs with coercion",
			input: "enabled=true, count=7",
			want:  map[string]any{"enabled": true, "count": int64(7)},
		},
		{
			name:  "newline separated pairs",
			input: "name: web\nwait: false",
			want:  map[string]any{"name": "web", "wait": false},
		},
		{
			name:  "null and none coerce to nil",
			input: "a: null, b: none",
			want:  map[string]any{"a": nil, "b": nil},
		},
		{
			name:  "float value",
			input: "threshold: 0.75",
			want:  map[string]any{"threshold": 0.75},
		},
		{
			name:  "nan stays a string",
			input: "x: NaN",
			want:  map[string]any{"x": "NaN"},
		},
		{
			name:  "comma inside value falls back to raw",
			input: "tags: a,b,c",
			want:  map[string]any{"input": "tags: a,b,c"},
		},
		{
			name:  "plain text falls back to raw",
			input: "get all pods in the default namespace",
			want:  map[string]any{"input": "get all pods in the default namespace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseActionInput(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseActionInput(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}
