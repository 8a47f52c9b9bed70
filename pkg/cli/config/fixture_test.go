package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/fixtureprov/pkg/cli/config"
	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "fixtures.toml")
	gt.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestFixture_Resolve_Defaults(t *testing.T) {
	base := t.TempDir()
	cfg := &config.Fixture{BaseDir: base}

	settings, err := cfg.Resolve()
	gt.NoError(t, err)
	gt.Value(t, settings.Source).Equal(model.DefaultArchiveSource)
	gt.Value(t, settings.URL).Equal("")
	gt.Value(t, settings.ArchiveURL()).Equal("https://github.com/toeverything/AFFiNE/archive/refs/tags/v0.24.2/v0.24.2.tar.gz")
	gt.Value(t, settings.DestDir).Equal(filepath.Join(base, "fixtures"))
}

func TestFixture_Resolve_Precedence(t *testing.T) {
	path := writeConfig(t, `
url = "https://example.com/file.tar.gz"
dest = "from-file"

[source]
owner = "file-owner"
repo = "file-repo"
tag = "v9.9.9"
`)
	base := t.TempDir()

	t.Run("config file overrides defaults", func(t *testing.T) {
		settings, err := (&config.Fixture{ConfigPath: path, BaseDir: base}).Resolve()
		gt.NoError(t, err)
		gt.Value(t, settings.Source).Equal(model.ArchiveSource{Owner: "file-owner", Repo: "file-repo", Tag: "v9.9.9"})
		gt.Value(t, settings.ArchiveURL()).Equal("https://example.com/file.tar.gz")
		gt.Value(t, settings.DestDir).Equal(filepath.Join(base, "from-file"))
	})

	t.Run("flags override config file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "abs")
		settings, err := (&config.Fixture{
			ConfigPath: path,
			BaseDir:    base,
			URL:        "https://example.com/flag.tar.gz",
			Tag:        "v1.0.0",
			Dest:       dest,
		}).Resolve()
		gt.NoError(t, err)
		gt.Value(t, settings.Source).Equal(model.ArchiveSource{Owner: "file-owner", Repo: "file-repo", Tag: "v1.0.0"})
		gt.Value(t, settings.ArchiveURL()).Equal("https://example.com/flag.tar.gz")
		gt.Value(t, settings.DestDir).Equal(dest)
	})
}

func TestFixture_Resolve_PartialConfigFile(t *testing.T) {
	path := writeConfig(t, "[source]\ntag = \"v0.1.0\"\n")

	settings, err := (&config.Fixture{ConfigPath: path, BaseDir: t.TempDir()}).Resolve()
	gt.NoError(t, err)
	gt.Value(t, settings.Source.Owner).Equal(model.DefaultArchiveSource.Owner)
	gt.Value(t, settings.ArchiveURL()).Equal("https://github.com/toeverything/AFFiNE/archive/refs/tags/v0.1.0/v0.1.0.tar.gz")
}

func TestFixture_Resolve_InvalidConfigFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := (&config.Fixture{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}).Resolve()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := (&config.Fixture{ConfigPath: writeConfig(t, "url = [")}).Resolve()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})
}

func TestDefaultBaseDir(t *testing.T) {
	base := config.DefaultBaseDir()
	_, err := os.Stat(filepath.Join(base, "go.mod"))
	gt.NoError(t, err)
}

func TestGitHub_GitHubToken(t *testing.T) {
	cfg := &config.GitHub{Token: "ghp_test"}
	gt.Value(t, cfg.GitHubToken()).Equal(types.GitHubToken("ghp_test"))
	gt.True(t, (&config.GitHub{}).GitHubToken().IsEmpty())
}
