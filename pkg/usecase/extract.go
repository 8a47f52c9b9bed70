package usecase

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/model"
	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// extractTar extracts every tar entry into destDir, overwriting existing files.
// All file operations go through an os.Root, so no entry can be written or read
// outside destDir even when symlinks from this or a previous run are on disk.
func (uc *fixtureUseCase) extractTar(ctx context.Context, tarData []byte, destDir string) (*model.ProvisionResult, error) {
	logger := ctxlog.From(ctx)

	root, err := os.OpenRoot(destDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open destination directory",
			goerr.V("dest_dir", destDir), goerr.T(types.ErrTagFilesystem))
	}
	defer root.Close()

	result := &model.ProvisionResult{
		DestDir: destDir,
	}

	tr := tar.NewReader(bytes.NewReader(tarData))
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read tar entry",
				goerr.V("extracted", len(result.Files)), goerr.T(types.ErrTagExtraction))
		}

		written, err := uc.extractEntry(ctx, root, tr, hdr)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extract entry", goerr.V("name", hdr.Name))
		}
		if written < 0 {
			continue
		}

		result.Files = append(result.Files, hdr.Name)
		result.Size += written
	}

	logger.Debug("Extracted tar entries", "count", len(result.Files))
	return result, nil
}

// extractEntry writes a single entry. It returns the number of bytes written
// for regular files, zero for other created entries and -1 for skipped ones.
func (uc *fixtureUseCase) extractEntry(ctx context.Context, root *os.Root, r io.Reader, hdr *tar.Header) (int64, error) {
	logger := ctxlog.From(ctx)

	switch hdr.Typeflag {
	case tar.TypeXGlobalHeader, tar.TypeChar, tar.TypeBlock, tar.TypeFifo:
		logger.Debug("Skipping tar entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		return -1, nil
	}

	name, err := entryPath(hdr.Name)
	if err != nil {
		return 0, err
	}
	perm := hdr.FileInfo().Mode().Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := root.MkdirAll(name, perm|0700); err != nil {
			return 0, ioError(root, err, "failed to create directory", name)
		}
		return 0, nil

	case tar.TypeReg:
		return uc.writeFile(root, r, name, perm)

	case tar.TypeSymlink:
		return 0, writeSymlink(root, name, hdr.Linkname)

	case tar.TypeLink:
		srcName, err := entryPath(hdr.Linkname)
		if err != nil {
			return 0, err
		}
		src, err := root.Open(srcName)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to open hard link target",
				goerr.V("link", hdr.Linkname), goerr.T(types.ErrTagExtraction))
		}
		defer src.Close()
		return uc.writeFile(root, src, name, perm)

	default:
		logger.Debug("Skipping unsupported tar entry", "name", hdr.Name, "type", string(hdr.Typeflag))
		return -1, nil
	}
}

// writeFile copies r into name, replacing any existing file
func (uc *fixtureUseCase) writeFile(root *os.Root, r io.Reader, name string, perm fs.FileMode) (int64, error) {
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return 0, ioError(root, err, "failed to create parent directories", dir)
		}
	}

	// O_TRUNC would follow a symlink left by a previous run
	if err := removeSymlink(root, name); err != nil {
		return 0, err
	}

	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, ioError(root, err, "failed to create destination file", name)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, uc.maxFileBytes+1))
	if err != nil {
		// A short read from the tar stream means a truncated archive
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, goerr.Wrap(err, "truncated tar entry",
				goerr.V("name", name), goerr.T(types.ErrTagExtraction))
		}
		return 0, goerr.Wrap(err, "failed to copy file content",
			goerr.V("name", name), goerr.T(types.ErrTagFilesystem))
	}
	if n > uc.maxFileBytes {
		return 0, goerr.New("file exceeds size limit",
			goerr.V("name", name),
			goerr.V("max_bytes", uc.maxFileBytes),
			goerr.T(types.ErrTagExtraction))
	}

	if err := f.Chmod(perm); err != nil {
		return 0, goerr.Wrap(err, "failed to set file mode",
			goerr.V("name", name), goerr.T(types.ErrTagFilesystem))
	}

	if err := f.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to close destination file",
			goerr.V("name", name), goerr.T(types.ErrTagFilesystem))
	}

	return n, nil
}

// writeSymlink creates name -> linkname. A link that resolves outside the root
// once created, e.g. through a parent that is itself a symlink, is removed again.
func writeSymlink(root *os.Root, name, linkname string) error {
	if path.IsAbs(linkname) || filepath.IsAbs(linkname) {
		return goerr.New("absolute symlink target",
			goerr.V("link", linkname), goerr.T(types.ErrTagExtraction))
	}
	if escapes(path.Join(path.Dir(filepath.ToSlash(name)), linkname)) {
		return goerr.New("symlink target escapes destination",
			goerr.V("link", linkname), goerr.T(types.ErrTagExtraction))
	}

	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0755); err != nil {
			return ioError(root, err, "failed to create parent directories", dir)
		}
	}
	if err := root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError(root, err, "failed to replace existing path", name)
	}
	if err := root.Symlink(linkname, name); err != nil {
		return ioError(root, err, "failed to create symlink", name)
	}

	if resolvesOutside(root, name) {
		_ = root.Remove(name)
		return goerr.New("symlink target escapes destination",
			goerr.V("name", name), goerr.V("link", linkname), goerr.T(types.ErrTagExtraction))
	}
	return nil
}

func removeSymlink(root *os.Root, name string) error {
	fi, err := root.Lstat(name)
	if err != nil || fi.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	if err := root.Remove(name); err != nil {
		return ioError(root, err, "failed to remove existing symlink", name)
	}
	return nil
}

// entryPath converts an archive entry name into a root-relative path
func entryPath(name string) (string, error) {
	if path.IsAbs(name) || filepath.IsAbs(name) {
		return "", goerr.New("absolute path in archive",
			goerr.V("name", name), goerr.T(types.ErrTagExtraction))
	}
	if escapes(name) {
		return "", goerr.New("invalid file path detected",
			goerr.V("name", name), goerr.T(types.ErrTagExtraction))
	}
	return filepath.FromSlash(path.Clean(name)), nil
}

// escapes reports whether a slash separated relative path leaves its base
func escapes(p string) bool {
	p = path.Clean(p)
	return p == ".." || strings.HasPrefix(p, "../")
}

// ioError tags a failed root operation. Failures caused by name resolving
// outside the root are extraction errors, everything else is a filesystem error.
func ioError(root *os.Root, err error, msg, name string) error {
	tag := types.ErrTagFilesystem
	if isPathEscape(err) || resolvesOutside(root, name) {
		tag = types.ErrTagExtraction
	}
	return goerr.Wrap(err, msg, goerr.V("name", name), goerr.T(tag))
}

func resolvesOutside(root *os.Root, name string) bool {
	_, err := root.Stat(name)
	return isPathEscape(err)
}

// os.Root does not export the error it returns for paths leaving the root
func isPathEscape(err error) bool {
	return err != nil && strings.HasSuffix(err.Error(), "path escapes from parent")
}
