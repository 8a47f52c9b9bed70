package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/interfaces"
	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// maxRedirects is the number of redirects followed when resolving an archive link
const maxRedirects = 3

type client struct {
	githubClient *github.Client
}

// Option is a functional option for the GitHub client
type Option func(*github.Client) error

// WithBaseURL points the client at a GitHub Enterprise or test API endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *github.Client) error {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub API base URL",
				goerr.V("base_url", baseURL), goerr.T(types.ErrTagConfig))
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a GitHub API client, authenticated when token is not empty
func NewClient(httpClient *http.Client, token types.GitHubToken, opts ...Option) (interfaces.ArchiveResolver, error) {
	githubClient := github.NewClient(httpClient)
	if !token.IsEmpty() {
		githubClient = githubClient.WithAuthToken(token.String())
	}

	for _, opt := range opts {
		if err := opt(githubClient); err != nil {
			return nil, err
		}
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// ResolveTarballURL resolves the download URL of the release tarball
func (c *client) ResolveTarballURL(ctx context.Context, src model.ArchiveSource) (string, error) {
	if err := src.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid archive source", goerr.T(types.ErrTagConfig))
	}

	link, _, err := c.githubClient.Repositories.GetArchiveLink(ctx, src.Owner, src.Repo, github.Tarball, &github.RepositoryContentGetOptions{
		Ref: src.Tag,
	}, maxRedirects)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get tarball download URL",
			goerr.V("source", src.String()), goerr.T(types.ErrTagNetwork))
	}

	return link.String(), nil
}
