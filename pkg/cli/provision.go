package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/fixtureprov/pkg/cli/config"
	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
	"github.com/m-mizutani/fixtureprov/pkg/infra/fetcher"
	githubinfra "github.com/m-mizutani/fixtureprov/pkg/infra/github"
	"github.com/m-mizutani/fixtureprov/pkg/usecase"
)

func provision(fixtureCfg *config.Fixture, githubCfg *config.GitHub) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		logger := ctxlog.From(ctx)

		if c.Args().Len() > 0 {
			return goerr.New("unexpected arguments",
				goerr.V("args", c.Args().Slice()), goerr.T(types.ErrTagConfig))
		}

		settings, err := fixtureCfg.Resolve()
		if err != nil {
			return err
		}
		token := githubCfg.GitHubToken()

		logger.Debug("Loaded configuration",
			slog.Any("fixture", fixtureCfg),
			slog.Any("github", githubCfg),
		)

		archiveURL := settings.ArchiveURL()
		if githubCfg.ResolveByAPI && settings.URL == "" {
			var opts []githubinfra.Option
			if githubCfg.APIBaseURL != "" {
				opts = append(opts, githubinfra.WithBaseURL(githubCfg.APIBaseURL))
			}

			resolver, err := githubinfra.NewClient(nil, token, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			archiveURL, err = resolver.ResolveTarballURL(ctx, settings.Source)
			if err != nil {
				return err
			}
			logger.Info("Resolved tarball URL", "source", settings.Source.String(), "url", archiveURL)
		}

		uc := usecase.NewFixture(
			fetcher.New(fetcher.WithMaxBytes(fixtureCfg.MaxDownloadBytes)),
			usecase.WithMaxArchiveBytes(fixtureCfg.MaxArchiveBytes),
			usecase.WithMaxFileBytes(fixtureCfg.MaxFileBytes),
		)

		result, err := uc.Provision(ctx, &model.ProvisionRequest{
			URL:     archiveURL,
			DestDir: settings.DestDir,
			Token:   token,
		})
		if err != nil {
			return err
		}

		logger.Info("Fixtures are ready",
			"dest_dir", result.DestDir,
			"file_count", len(result.Files),
			"total_size_bytes", result.Size,
		)
		return nil
	}
}
