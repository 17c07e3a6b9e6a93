package hosting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/TobiSchelling/SmogStory/internal/config"
)

// ErrNoRepository is returned when no hosting repository is configured.
var ErrNoRepository = errors.New("hosting repository not configured")

// Host turns a local story file into a URL the publishing API can fetch.
type Host interface {
	PublicURL(ctx context.Context, localPath string) (string, error)
}

// New builds the host selected by cfg.Hosting.Provider.
func New(ctx context.Context, cfg *config.Config) (Host, error) {
	switch cfg.Hosting.Provider {
	case "", "github":
		return NewGitHubRaw(cfg.Hosting.GitHub, cfg.Publish.ImagesDir)
	case "s3":
		return NewS3(ctx, cfg.Hosting.S3)
	}
	return nil, fmt.Errorf("unknown hosting provider %q", cfg.Hosting.Provider)
}

// GitHubRaw serves files committed to a GitHub repository through
// raw.githubusercontent.com.
type GitHubRaw struct {
	Repository string
	Branch     string
	Dir        string
	BaseURL    string
}

// NewGitHubRaw resolves repository and branch from the environment first,
// then from config. The repository has no default.
func NewGitHubRaw(cfg config.GitHubHosting, imagesDir string) (*GitHubRaw, error) {
	repo := envOr(cfg.RepositoryEnv, cfg.Repository)
	if repo == "" {
		return nil, fmt.Errorf("%w: set %s or hosting.github.repository", ErrNoRepository, displayEnv(cfg.RepositoryEnv))
	}
	branch := envOr(cfg.BranchEnv, cfg.Branch)
	if branch == "" {
		branch = "main"
	}
	return &GitHubRaw{
		Repository: repo,
		Branch:     branch,
		Dir:        filepath.ToSlash(imagesDir),
		BaseURL:    "https://raw.githubusercontent.com",
	}, nil
}

// PublicURL returns the raw content URL for the file.
func (g *GitHubRaw) PublicURL(_ context.Context, localPath string) (string, error) {
	name := filepath.Base(localPath)
	return fmt.Sprintf("%s/%s/%s/%s", g.BaseURL, g.Repository, g.Branch, path.Join(g.Dir, name)), nil
}

func envOr(key, fallback string) string {
	if key != "" {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return fallback
}

func displayEnv(key string) string {
	if key == "" {
		return "the repository variable"
	}
	return key
}
