package request

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

func decompressBrotli(r io.ReadCloser) (io.ReadCloser, error) {
	return &brotliReader{s: r, r: brotli.NewReader(r)}, nil
}

type brotliReader struct {
	s io.ReadCloser
	r *brotli.Reader
}

func (b *brotliReader) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *brotliReader) Close() error                { return b.s.Close() }

func decompressZstd(r io.ReadCloser) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReader{s: r, r: zr}, nil
}

type zstdReader struct {
	s io.ReadCloser
	r *zstd.Decoder
}

func (z *zstdReader) Read(p []byte) (int, error) {
	return z.r.Read(p)
}

func (z *zstdReader) Close() error {
	z.r.Close()
	return z.s.Close()
}
