package config

// RunbookConfig controls fetching of per-alert runbooks.
type RunbookConfig struct {
	// Domains runbook URLs may point at. Empty allows any domain.
	AllowedDomains []string `yaml:"allowed_domains,omitempty"`

	// Cache lifetime for fetched runbook content.
	CacheTTL Duration `yaml:"cache_ttl,omitempty"`

	// Environment variable holding a GitHub token for private repositories.
	GitHubTokenEnv string `yaml:"github_token_env,omitempty"`
}
