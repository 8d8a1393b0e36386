package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dshills/accepted/internal/engine/buffer"
)

// readSource returns the text of the file at path with line endings
// normalized. A missing file reads as empty: it is created on first save.
func readSource(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &OperationError{Op: "open", Target: path, Err: err}
	}
	return buffer.NormalizeLineEndings(string(data)), nil
}

// writeSource replaces the file at path with text. It writes a temporary
// file in the same directory and renames it over path, keeping the old
// file's permissions.
func writeSource(path, text string) error {
	if path == "" {
		return ErrNoFileName
	}
	fail := func(err error) error {
		return &OperationError{Op: "save", Target: path, Err: err}
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fail(fmt.Errorf("creating temp file: %w", err))
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(text); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("writing temp file: %w", err))
	}
	if err := temp.Chmod(perm); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("setting permissions: %w", err))
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("renaming temp file: %w", err))
	}
	return nil
}
