package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token        string `masq:"secret"`
	ResolveByAPI bool
	APIBaseURL   string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "Bearer token attached to the archive request",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.BoolFlag{
			Name:        "resolve-via-api",
			Usage:       "Resolve the tarball link through the GitHub REST API",
			Destination: &c.ResolveByAPI,
			Sources:     cli.EnvVars("FIXTUREPROV_RESOLVE_VIA_API"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL (for GitHub Enterprise)",
			Destination: &c.APIBaseURL,
			Sources:     cli.EnvVars("FIXTUREPROV_GITHUB_API_URL"),
		},
	}
}

// GitHubToken returns the configured token
func (c *GitHub) GitHubToken() types.GitHubToken {
	return types.GitHubToken(c.Token)
}
