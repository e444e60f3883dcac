package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Duration
	}{
		{name: "duration string", yaml: "5m", want: Duration(5 * time.Minute)},
		{name: "compound duration string", yaml: "1h30m", want: Duration(90 * time.Minute)},
		{name: "seconds string", yaml: "45s", want: Duration(45 * time.Second)},
		{name: "bare integer is seconds", yaml: "120", want: Duration(120 * time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &d))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDurationUnmarshalYAMLInvalid(t *testing.T) {
	var d Duration
	err := yaml.Unmarshal([]byte("soon"), &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestDurationStd(t *testing.T) {
	assert.Equal(t, 30*time.Second, Duration(30*time.Second).Std())
}
