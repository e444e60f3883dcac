package runbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToRawURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "blob URL",
			in:   "https://github.com/org/repo/blob/main/runbooks/pod-crash.md",
			want: "https://raw.githubusercontent.com/org/repo/refs/heads/main/runbooks/pod-crash.md",
		},
		{
			name: "nested path",
			in:   "https://github.com/org/repo/blob/main/runbooks/k8s/oom.md",
			want: "https://raw.githubusercontent.com/org/repo/refs/heads/main/runbooks/k8s/oom.md",
		},
		{
			name: "www host",
			in:   "https://www.github.com/org/repo/blob/develop/doc.md",
			want: "https://raw.githubusercontent.com/org/repo/refs/heads/develop/doc.md",
		},
		{
			name: "already raw",
			in:   "https://raw.githubusercontent.com/org/repo/refs/heads/main/doc.md",
			want: "https://raw.githubusercontent.com/org/repo/refs/heads/main/doc.md",
		},
		{
			name: "non-github host unchanged",
			in:   "https://gitlab.com/org/repo/blob/main/doc.md",
			want: "https://gitlab.com/org/repo/blob/main/doc.md",
		},
		{
			name: "github URL without blob segment unchanged",
			in:   "https://github.com/org/repo",
			want: "https://github.com/org/repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertToRawURL(tt.in))
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Run("https allowed", func(t *testing.T) {
		assert.NoError(t, ValidateURL("https://github.com/org/repo/blob/main/doc.md", nil))
	})

	t.Run("file scheme rejected", func(t *testing.T) {
		err := ValidateURL("file:///etc/passwd", nil)
		assert.ErrorContains(t, err, "invalid scheme")
	})

	t.Run("domain allowlist enforced", func(t *testing.T) {
		allowed := []string{"github.com"}
		assert.NoError(t, ValidateURL("https://github.com/org/repo/blob/main/doc.md", allowed))
		assert.NoError(t, ValidateURL("https://www.github.com/org/repo/blob/main/doc.md", allowed))

		err := ValidateURL("https://evil.example.com/doc.md", allowed)
		assert.ErrorContains(t, err, "not in allowed list")
	})
}
