package model

import (
	"fmt"
	"net/url"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// ArchiveSource identifies a tagged release of a GitHub repository
type ArchiveSource struct {
	Owner string // Repository owner
	Repo  string // Repository name
	Tag   string // Release tag name
}

// DefaultArchiveSource is the release used to populate the fixtures directory
var DefaultArchiveSource = ArchiveSource{
	Owner: "toeverything",
	Repo:  "AFFiNE",
	Tag:   "v0.24.2",
}

// Validate checks that all fields are set
func (x ArchiveSource) Validate() error {
	if x.Owner == "" || x.Repo == "" || x.Tag == "" {
		return goerr.New("incomplete archive source",
			goerr.V("owner", x.Owner),
			goerr.V("repo", x.Repo),
			goerr.V("tag", x.Tag),
			goerr.T(types.ErrTagConfig))
	}
	return nil
}

// URL returns the tarball download URL of the tagged release
func (x ArchiveSource) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s/archive/refs/tags/%s/%s.tar.gz",
		url.PathEscape(x.Owner),
		url.PathEscape(x.Repo),
		url.PathEscape(x.Tag),
		url.PathEscape(x.Tag),
	)
}

// String returns "owner/repo@tag"
func (x ArchiveSource) String() string {
	return x.Owner + "/" + x.Repo + "@" + x.Tag
}
