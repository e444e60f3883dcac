package masking

// builtinPatterns is the catalog of regex masking patterns available to
// MCP server configs by name.
var builtinPatterns = map[string]patternDef{
	"api_key": {
		pattern:     `(?i)(?:api[_-]?key|apikey|key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{20,})["']?`,
		replacement: `"api_key": "__MASKED_API_KEY__"`,
		description: "API keys",
	},
	"password": {
		pattern:     `(?i)(?:password|pwd|pass)["']?\s*[:=]\s*["']?([^"'\s\n]{6,})["']?`,
		replacement: `"password": "__MASKED_PASSWORD__"`,
		description: "Passwords",
	},
	"certificate": {
		pattern:     `(?s)-----BEGIN [A-Z ]+-----.*?-----END [A-Z ]+-----`,
		replacement: `__MASKED_CERTIFICATE__`,
		description: "SSL/TLS certificates",
	},
	"certificate_authority_data": {
		pattern:     `(?i)certificate-authority-data:\s*([A-Za-z0-9+/]{20,}={0,2})`,
		replacement: `certificate-authority-data: __MASKED_CA_CERTIFICATE__`,
		description: "Kubernetes CA data",
	},
	"token": {
		pattern:     `(?i)(?:token|bearer|jwt)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
		replacement: `"token": "__MASKED_TOKEN__"`,
		description: "Access tokens",
	},
	"email": {
		pattern:     `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
		replacement: `__MASKED_EMAIL__`,
		description: "Email addresses",
	},
	"ssh_key": {
		pattern:     `ssh-(?:rsa|dss|ed25519|ecdsa)\s+[A-Za-z0-9+/=]+`,
		replacement: `__MASKED_SSH_KEY__`,
		description: "SSH public keys",
	},
	"private_key": {
		pattern:     `(?i)(?:private[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
		replacement: `"private_key": "__MASKED_PRIVATE_KEY__"`,
		description: "Private keys",
	},
	"secret_key": {
		pattern:     `(?i)(?:secret[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
		replacement: `"secret_key": "__MASKED_SECRET_KEY__"`,
		description: "Secret keys",
	},
	"aws_access_key": {
		pattern:     `(?i)(?:aws[_-]?access[_-]?key[_-]?id)["']?\s*[:=]\s*["']?(AKIA[A-Z0-9]{16})["']?`,
		replacement: `"aws_access_key_id": "__MASKED_AWS_KEY__"`,
		description: "AWS access keys",
	},
	"aws_secret_key": {
		pattern:     `(?i)(?:aws[_-]?secret[_-]?access[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`,
		replacement: `"aws_secret_access_key": "__MASKED_AWS_SECRET__"`,
		description: "AWS secret keys",
	},
	"github_token": {
		pattern:     `(?i)(?:github[_-]?token|gh[ps]_[A-Za-z0-9_]{36,255})`,
		replacement: `__MASKED_GITHUB_TOKEN__`,
		description: "GitHub tokens",
	},
}

// builtinGroups maps group names to pattern or code-masker names.
// "kubernetes_secret" resolves to the structural masker, not a regex.
var builtinGroups = map[string][]string{
	"basic":      {"api_key", "password"},
	"secrets":    {"api_key", "password", "token", "private_key", "secret_key"},
	"security":   {"api_key", "password", "token", "certificate", "certificate_authority_data", "email", "ssh_key"},
	"kubernetes": {"kubernetes_secret", "api_key", "password", "certificate_authority_data"},
	"cloud":      {"aws_access_key", "aws_secret_key", "api_key", "token"},
}

type patternDef struct {
	pattern     string
	replacement string
	description string
}
