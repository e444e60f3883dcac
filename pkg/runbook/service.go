package runbook

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/codeready-toolchain/inquest/pkg/config"
)

// Service resolves per-alert runbook URLs into content, with a TTL cache in
// front of the GitHub fetches.
type Service struct {
	github *GitHubClient
	cache  *Cache
	cfg    *config.RunbookConfig
}

// NewService creates a Service from config. cfg may be nil (no domain
// restrictions, default cache TTL, no auth).
func NewService(cfg *config.RunbookConfig) *Service {
	cacheTTL := 1 * time.Minute
	if cfg != nil && cfg.CacheTTL > 0 {
		cacheTTL = cfg.CacheTTL.Std()
	}

	var token string
	if cfg != nil && cfg.GitHubTokenEnv != "" {
		token = os.Getenv(cfg.GitHubTokenEnv)
	}

	return &Service{
		github: NewGitHubClient(token),
		cache:  NewCache(cacheTTL),
		cfg:    cfg,
	}
}

// Resolve fetches the runbook at the given URL. Empty URL resolves to empty
// content. Fetch failures return an error; callers decide whether the run
// proceeds without a runbook.
func (s *Service) Resolve(ctx context.Context, runbookURL string) (string, error) {
	if runbookURL == "" {
		return "", nil
	}

	var allowedDomains []string
	if s.cfg != nil {
		allowedDomains = s.cfg.AllowedDomains
	}
	if err := ValidateURL(runbookURL, allowedDomains); err != nil {
		return "", fmt.Errorf("runbook URL %s: %w", runbookURL, err)
	}

	// Cache key is the normalized raw URL so blob and raw forms share entries.
	normalizedURL := ConvertToRawURL(runbookURL)
	if content, ok := s.cache.Get(normalizedURL); ok {
		return content, nil
	}

	content, err := s.github.DownloadContent(ctx, runbookURL)
	if err != nil {
		return "", fmt.Errorf("fetch runbook %s: %w", runbookURL, err)
	}

	s.cache.Set(normalizedURL, content)
	return content, nil
}

// OverrideHTTPClientForTest replaces the internal HTTP client.
func (s *Service) OverrideHTTPClientForTest(httpClient *http.Client) {
	s.github.httpClient = httpClient
}
