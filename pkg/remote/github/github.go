// Package github fetches rule lists from GitHub repositories.
package github

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/multichange/pkg/remote"
)

// GitHubClient defines the interface for GitHub API operations we need
type GitHubClient interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	DownloadContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (io.ReadCloser, *github.Response, error)
}

// Source implements remote.Source for GitHub
type Source struct {
	client GitHubClient
}

var _ remote.Source = (*Source)(nil)

func init() {
	remote.RegisterSource("github", NewSource())
}

// NewSource creates a GitHub source, authenticated when GITHUB_TOKEN is set
func NewSource() *Source {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return NewSourceWithClient(&githubClientWrapper{client: client})
}

// NewSourceWithClient creates a source over any client, such as a fake in tests
func NewSourceWithClient(client GitHubClient) *Source {
	return &Source{client: client}
}

// githubClientWrapper wraps the GitHub client to implement our interface
type githubClientWrapper struct {
	client *github.Client
}

func (w *githubClientWrapper) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	return w.client.Repositories.GetContents(ctx, owner, repo, path, opts)
}

func (w *githubClientWrapper) DownloadContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (io.ReadCloser, *github.Response, error) {
	return w.client.Repositories.DownloadContents(ctx, owner, repo, path, opts)
}

// Name returns the name of the source
func (s *Source) Name() string {
	return "github"
}

// Fetch returns the content of a file. Files too large for the contents API
// come back without inline content and are downloaded instead.
func (s *Source) Fetch(ctx context.Context, ref remote.Reference) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("owner", ref.Owner).Str("repo", ref.Repo).Str("path", ref.Path).Str("ref", ref.Ref).Msg("fetching file")

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("context error: %w", err)
	}

	opts := &github.RepositoryContentGetOptions{Ref: ref.Ref}

	file, dir, resp, err := s.client.GetContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Errorf("context error: %w", ctx.Err())
		}
		if _, ok := err.(*github.RateLimitError); ok {
			return nil, errors.Errorf("rate limit exceeded: %w", err)
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, errors.Errorf("file not found: %s", ref.Path)
		}
		return nil, errors.Errorf("getting contents from GitHub: %w", err)
	}
	if file == nil {
		return nil, errors.Errorf("path is a directory with %d entries: %s", len(dir), ref.Path)
	}

	if file.GetEncoding() != "none" && file.Content != nil {
		content, err := file.GetContent()
		if err != nil {
			return nil, errors.Errorf("decoding contents: %w", err)
		}
		return []byte(content), nil
	}

	logger.Debug().Int("size", file.GetSize()).Msg("downloading large file")

	rc, _, err := s.client.DownloadContents(ctx, ref.Owner, ref.Repo, ref.Path, opts)
	if err != nil {
		return nil, errors.Errorf("downloading contents from GitHub: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Errorf("reading contents: %w", err)
	}
	return data, nil
}
