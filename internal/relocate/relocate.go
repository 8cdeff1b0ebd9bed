// Package relocate moves processed files into their success or error folder
// without ever overwriting what is already there.
package relocate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hotfolder/internal/fileutil"
)

// ErrSourceLeftBehind reports the degraded state where the file was copied to
// its destination but the original could not be removed from the watch folder.
// Callers must not re-dispatch: the job already reached the spooler, the
// leftover source is a duplicate for manual cleanup.
var ErrSourceLeftBehind = errors.New("relocated copy left source file behind")

// Relocate moves path into destDir, creating destDir (and parents) first. A
// name collision produces a numbered sibling (report.pdf -> report_1.pdf)
// instead of an overwrite. Rename is tried first; across filesystems it falls
// back to copy-then-delete. The final destination path is returned even when
// the error is ErrSourceLeftBehind.
func Relocate(path, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination %q: %w", destDir, err)
	}

	dest, err := collisionFreePath(destDir, filepath.Base(path))
	if err != nil {
		return "", err
	}

	if err := os.Rename(path, dest); err == nil {
		return dest, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("relocate %q: %w", path, err)
	}

	// Rename refused (typically a cross-device move); stream the bytes over
	// and remove the source afterwards.
	if err := fileutil.CopyFile(path, dest); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("copy %q to %q: %w", path, dest, err)
	}
	if err := os.Remove(path); err != nil {
		return dest, fmt.Errorf("%w: remove %q: %v", ErrSourceLeftBehind, path, err)
	}
	return dest, nil
}

// collisionFreePath returns a path in destDir for filename that does not exist
// yet, appending _1, _2, ... before the extension when needed.
func collisionFreePath(destDir, filename string) (string, error) {
	candidate := filepath.Join(destDir, filename)
	if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate, nil
	} else if err != nil {
		return "", fmt.Errorf("probe destination %q: %w", candidate, err)
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		candidate = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("probe destination %q: %w", candidate, err)
		}
	}
}
