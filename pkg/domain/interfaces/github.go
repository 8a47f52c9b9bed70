package interfaces

import (
	"context"

	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// ArchiveFetcher retrieves a remote archive
type ArchiveFetcher interface {
	// Fetch issues a single GET to url and returns the whole response body
	Fetch(ctx context.Context, url string, token types.GitHubToken) ([]byte, error)
}

// ArchiveResolver resolves the download link of a release tarball
type ArchiveResolver interface {
	// ResolveTarballURL returns the URL serving the tarball of the tagged release
	ResolveTarballURL(ctx context.Context, src model.ArchiveSource) (string, error)
}
