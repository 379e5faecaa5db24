package traitdex

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pulplabs/traitdex/collection"
)

var (
	// ErrInputRead indicates a missing or malformed source file. Fatal: the
	// run aborts immediately.
	ErrInputRead = errors.New("input read error")

	// ErrWrite indicates an I/O failure while writing an artifact. Fatal.
	// Artifacts already flushed to disk stay on disk.
	ErrWrite = errors.New("artifact write error")
)

// translateError funnels stage errors into the pipeline taxonomy so callers
// can match with errors.Is regardless of which component failed.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInputRead) || errors.Is(err, ErrWrite) {
		return err
	}

	var malformed *collection.MalformedInputError
	if errors.As(err, &malformed) {
		return fmt.Errorf("%w: %w", ErrInputRead, err)
	}
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrInputRead, err)
	}

	return err
}
