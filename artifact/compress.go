package artifact

import (
	"bytes"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor optionally compresses encoded artifact bytes before the write.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	// Ext is the suffix appended to the artifact file name, e.g. ".zst".
	Ext() string
	Name() string
}

// CompressorByName returns a built-in compressor by its stable name.
// The empty name selects no compression (nil Compressor, true).
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "":
		return nil, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Zstd compresses with klauspost zstd at the default level.
type Zstd struct{}

// Compress implements Compressor.
func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	out := enc.EncodeAll(data, make([]byte, 0, len(data)/2))
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ext implements Compressor.
func (Zstd) Ext() string { return ".zst" }

// Name implements Compressor.
func (Zstd) Name() string { return "zstd" }

// LZ4 compresses with the lz4 frame format. Faster to decode than zstd,
// larger output; useful when the presentation layer decompresses per request.
type LZ4 struct{}

// Compress implements Compressor.
func (LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Ext implements Compressor.
func (LZ4) Ext() string { return ".lz4" }

// Name implements Compressor.
func (LZ4) Name() string { return "lz4" }
