package scmrev

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// Status is the outcome of WriteIfChanged.
type Status int

const (
	// StatusCurrent means the file already held the text and was not touched.
	StatusCurrent Status = iota
	// StatusUpdated means the file was created or overwritten.
	StatusUpdated
)

func (s Status) String() string {
	switch s {
	case StatusCurrent:
		return "current"
	case StatusUpdated:
		return "updated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ReadExisting returns the content at path, or "" if the file does not exist.
func ReadExisting(fsys afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteIfChanged writes text to path unless the file already holds exactly
// that text, so downstream builds are not triggered by an unchanged header.
func WriteIfChanged(fsys afero.Fs, path, text string) (Status, error) {
	status, _, err := writeIfChanged(fsys, path, text)
	return status, err
}

// writeIfChanged is WriteIfChanged that also returns the previous content.
func writeIfChanged(fsys afero.Fs, path, text string) (Status, string, error) {
	existing, err := ReadExisting(fsys, path)
	if err != nil {
		return StatusCurrent, "", err
	}
	if existing == text {
		return StatusCurrent, existing, nil
	}

	if err := fsys.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return StatusCurrent, existing, fmt.Errorf("create output directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(text), fileMode); err != nil {
		return StatusCurrent, existing, fmt.Errorf("write %s: %w", path, err)
	}
	return StatusUpdated, existing, nil
}
