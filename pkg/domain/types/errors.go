package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures by the pipeline stage that produced them.
var (
	ErrTagNetwork       = goerr.NewTag("network")
	ErrTagDecompression = goerr.NewTag("decompression")
	ErrTagExtraction    = goerr.NewTag("extraction")
	ErrTagFilesystem    = goerr.NewTag("filesystem")
	ErrTagConfig        = goerr.NewTag("config")
)
