package usecase

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/interfaces"
	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

const (
	// DefaultMaxArchiveBytes bounds the decompressed tar stream (4 GiB)
	DefaultMaxArchiveBytes int64 = 4 << 30
	// DefaultMaxFileBytes bounds a single extracted file (1 GiB)
	DefaultMaxFileBytes int64 = 1 << 30
)

type fixtureUseCase struct {
	fetcher         interfaces.ArchiveFetcher
	maxArchiveBytes int64
	maxFileBytes    int64
}

// FixtureOption is a functional option for the fixture use case
type FixtureOption func(*fixtureUseCase)

// WithMaxArchiveBytes limits the size of the decompressed archive
func WithMaxArchiveBytes(n int64) FixtureOption {
	return func(uc *fixtureUseCase) {
		uc.maxArchiveBytes = n
	}
}

// WithMaxFileBytes limits the size of each extracted file
func WithMaxFileBytes(n int64) FixtureOption {
	return func(uc *fixtureUseCase) {
		uc.maxFileBytes = n
	}
}

// NewFixture creates a new instance of FixtureUseCase
func NewFixture(fetcher interfaces.ArchiveFetcher, opts ...FixtureOption) interfaces.FixtureUseCase {
	uc := &fixtureUseCase{
		fetcher:         fetcher,
		maxArchiveBytes: DefaultMaxArchiveBytes,
		maxFileBytes:    DefaultMaxFileBytes,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Provision downloads the archive, decompresses it and extracts it into the destination directory.
// Nothing is retried and partially extracted files are left in place on failure.
func (uc *fixtureUseCase) Provision(ctx context.Context, req *model.ProvisionRequest) (*model.ProvisionResult, error) {
	logger := ctxlog.From(ctx)

	if req == nil || req.URL == "" || req.DestDir == "" {
		return nil, goerr.New("archive URL and destination directory are required", goerr.T(types.ErrTagConfig))
	}

	logger.Info("Provisioning fixtures",
		"stage", model.StageIdle,
		"url", req.URL,
		"dest_dir", req.DestDir,
		"authenticated", !req.Token.IsEmpty(),
	)

	if err := os.MkdirAll(req.DestDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create destination directory",
			goerr.V("dest_dir", req.DestDir), goerr.T(types.ErrTagFilesystem))
	}

	logger.Debug("Entering stage", "stage", model.StageFetching)
	compressed, err := uc.fetcher.Fetch(ctx, req.URL, req.Token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch archive",
			goerr.V("stage", model.StageFetching), goerr.T(types.ErrTagNetwork))
	}

	logger.Info("Downloaded archive", "size_bytes", len(compressed))

	logger.Debug("Entering stage", "stage", model.StageDecompressing)
	tarData, err := decompress(compressed, uc.maxArchiveBytes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decompress archive",
			goerr.V("stage", model.StageDecompressing), goerr.V("url", req.URL))
	}

	logger.Debug("Entering stage", "stage", model.StageExtracting, "tar_size_bytes", len(tarData))
	result, err := uc.extractTar(ctx, tarData, req.DestDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract archive",
			goerr.V("stage", model.StageExtracting), goerr.V("dest_dir", req.DestDir))
	}

	logger.Info("Extracted archive",
		"stage", model.StageDone,
		"dest_dir", result.DestDir,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)

	return result, nil
}
