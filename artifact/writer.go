package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pulplabs/traitdex/codec"
)

// Writer writes artifact documents under a root directory.
//
// Each document is encoded fully in memory, optionally compressed, then
// written atomically: temp file, write, fsync, close, rename, directory
// sync. A crash mid-write never leaves a partial document under its final
// name.
type Writer struct {
	root       string
	codec      codec.Codec
	compressor Compressor
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCodec sets the encoding codec. Nil falls back to codec.Default.
func WithCodec(c codec.Codec) WriterOption {
	return func(w *Writer) {
		if c != nil {
			w.codec = c
		}
	}
}

// WithCompressor sets an optional compressor. Nil means plain JSON.
func WithCompressor(c Compressor) WriterOption {
	return func(w *Writer) { w.compressor = c }
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(root string, optFns ...WriterOption) *Writer {
	w := &Writer{root: root, codec: codec.Default}
	for _, fn := range optFns {
		fn(w)
	}
	return w
}

// Root returns the writer's root directory.
func (w *Writer) Root() string { return w.root }

// Write encodes v and writes it under name (a path relative to the root,
// without compression suffix). It returns the final relative name, which
// carries the compressor's suffix when compression is enabled.
func (w *Writer) Write(name string, v any) (string, error) {
	data, err := w.codec.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if w.compressor != nil {
		if data, err = w.compressor.Compress(data); err != nil {
			return "", fmt.Errorf("compress %s: %w", name, err)
		}
		name += w.compressor.Ext()
	}

	path := filepath.Join(w.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return syncDir(filepath.Dir(path))
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
