package anki

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic   = []byte{0x28, 0xB5, 0x2F, 0xFD}
	sqliteMagic = []byte("SQLite format 3\x00")
)

// Codec compresses collection bytes for schema 18 packages.
type Codec interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte, maxSize int64) ([]byte, error)
}

// ZstdCodec is the Codec backed by klauspost/compress.
type ZstdCodec struct{}

func (ZstdCodec) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd.NewWriter() > %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

func (ZstdCodec) Decompress(src []byte, maxSize int64) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxSize)))
	if err != nil {
		return nil, fmt.Errorf("zstd.NewReader() > %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd.Decoder.DecodeAll() > %w", err)
	}
	if int64(len(out)) > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrDecompressedSize, len(out), maxSize)
	}
	return out, nil
}

func isZstd(b []byte) bool {
	return bytes.HasPrefix(b, zstdMagic)
}

func isSQLite(b []byte) bool {
	return bytes.HasPrefix(b, sqliteMagic)
}
