package model

import "github.com/m-mizutani/fixtureprov/pkg/domain/types"

// ProvisionRequest holds the inputs of a single provisioning run
type ProvisionRequest struct {
	URL     string            // Archive URL to fetch
	DestDir string            // Directory to extract into
	Token   types.GitHubToken // Optional bearer token
}

// ProvisionResult represents the result of a download and extraction
type ProvisionResult struct {
	DestDir string   // Directory the archive was extracted into
	Files   []string // Archive-relative names of extracted entries
	Size    int64    // Total size of extracted regular files in bytes
}
