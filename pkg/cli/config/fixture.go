package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
	"github.com/m-mizutani/fixtureprov/pkg/infra/fetcher"
	"github.com/m-mizutani/fixtureprov/pkg/usecase"
)

// DefaultDest is the destination directory relative to the base directory
const DefaultDest = "fixtures"

// Fixture holds fixture source and destination configuration.
// Empty fields fall back to the config file, then to compiled-in defaults.
type Fixture struct {
	URL        string
	Owner      string
	Repo       string
	Tag        string
	Dest       string
	BaseDir    string
	ConfigPath string

	MaxDownloadBytes int64
	MaxArchiveBytes  int64
	MaxFileBytes     int64
}

// FixtureSettings is the resolved fixture configuration
type FixtureSettings struct {
	Source  model.ArchiveSource
	URL     string // Explicit archive URL. Empty means derived from Source.
	DestDir string
}

// ArchiveURL returns the explicit URL or the one derived from Source
func (x *FixtureSettings) ArchiveURL() string {
	if x.URL != "" {
		return x.URL
	}
	return x.Source.URL()
}

type fixtureFile struct {
	URL    string `toml:"url"`
	Dest   string `toml:"dest"`
	Source struct {
		Owner string `toml:"owner"`
		Repo  string `toml:"repo"`
		Tag   string `toml:"tag"`
	} `toml:"source"`
}

// Flags returns CLI flags for fixture configuration
func (c *Fixture) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Usage:       "Archive URL (overrides --owner, --repo and --tag)",
			Destination: &c.URL,
			Sources:     cli.EnvVars("FIXTUREPROV_URL"),
		},
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Repository owner of the archive source (default: " + model.DefaultArchiveSource.Owner + ")",
			Destination: &c.Owner,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository name of the archive source (default: " + model.DefaultArchiveSource.Repo + ")",
			Destination: &c.Repo,
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Release tag of the archive source (default: " + model.DefaultArchiveSource.Tag + ")",
			Destination: &c.Tag,
		},
		&cli.StringFlag{
			Name:        "dest",
			Aliases:     []string{"d"},
			Usage:       "Destination directory (default: " + DefaultDest + ")",
			Destination: &c.Dest,
			Sources:     cli.EnvVars("FIXTUREPROV_DEST"),
		},
		&cli.StringFlag{
			Name:        "base-dir",
			Usage:       "Base directory of a relative destination (default: module source directory)",
			Destination: &c.BaseDir,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML config file",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("FIXTUREPROV_CONFIG"),
		},
		&cli.Int64Flag{
			Name:        "max-download-bytes",
			Usage:       "Upper bound of the downloaded (compressed) archive size",
			Value:       fetcher.DefaultMaxBytes,
			Destination: &c.MaxDownloadBytes,
		},
		&cli.Int64Flag{
			Name:        "max-archive-bytes",
			Usage:       "Upper bound of the decompressed archive size",
			Value:       usecase.DefaultMaxArchiveBytes,
			Destination: &c.MaxArchiveBytes,
		},
		&cli.Int64Flag{
			Name:        "max-file-bytes",
			Usage:       "Upper bound of a single extracted file",
			Value:       usecase.DefaultMaxFileBytes,
			Destination: &c.MaxFileBytes,
		},
	}
}

// Resolve merges flags, the config file and defaults
func (c *Fixture) Resolve() (*FixtureSettings, error) {
	var file fixtureFile
	if c.ConfigPath != "" {
		raw, err := os.ReadFile(c.ConfigPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read config file",
				goerr.V("path", c.ConfigPath), goerr.T(types.ErrTagConfig))
		}
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse config file",
				goerr.V("path", c.ConfigPath), goerr.T(types.ErrTagConfig))
		}
	}

	def := model.DefaultArchiveSource
	settings := &FixtureSettings{
		Source: model.ArchiveSource{
			Owner: pick(c.Owner, file.Source.Owner, def.Owner),
			Repo:  pick(c.Repo, file.Source.Repo, def.Repo),
			Tag:   pick(c.Tag, file.Source.Tag, def.Tag),
		},
		URL: pick(c.URL, file.URL, ""),
	}

	dest := pick(c.Dest, file.Dest, DefaultDest)
	if !filepath.IsAbs(dest) {
		base := c.BaseDir
		if base == "" {
			base = DefaultBaseDir()
		}
		dest = filepath.Join(base, dest)
	}
	settings.DestDir = dest

	return settings, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// DefaultBaseDir returns the module source directory when it exists on this
// host, otherwise the working directory.
func DefaultBaseDir() string {
	if _, file, _, ok := runtime.Caller(0); ok && filepath.IsAbs(file) {
		root := filepath.Join(filepath.Dir(file), "..", "..", "..")
		if fi, err := os.Stat(filepath.Join(root, "go.mod")); err == nil && !fi.IsDir() {
			return root
		}
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
