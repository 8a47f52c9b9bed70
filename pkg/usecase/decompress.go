package usecase

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/fixtureprov/pkg/domain/types"
)

// decompress gunzips the whole buffer. Output larger than maxBytes is rejected.
func decompress(data []byte, maxBytes int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid gzip header",
			goerr.V("size_bytes", len(data)), goerr.T(types.ErrTagDecompression))
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, maxBytes+1))
	if err != nil {
		return nil, goerr.Wrap(err, "corrupt gzip stream", goerr.T(types.ErrTagDecompression))
	}
	if int64(len(out)) > maxBytes {
		return nil, goerr.New("decompressed archive exceeds size limit",
			goerr.V("max_bytes", maxBytes), goerr.T(types.ErrTagDecompression))
	}

	return out, nil
}
