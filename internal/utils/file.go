package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrIsDirectory = errors.New("path is a directory")
	ErrTooLarge    = errors.New("file exceeds the size limit")
)

// StatInputFile returns the size of a regular file. A positive maxSize
// rejects larger files before anything is read.
func StatInputFile(filename string, maxSize int64) (int64, error) {
	if filename == "" {
		return 0, ErrEmptyPath
	}

	info, err := os.Stat(filename)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s: %w", filename, ErrIsDirectory)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return info.Size(), fmt.Errorf("%s is %s, over %s: %w",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize), ErrTooLarge)
	}
	return info.Size(), nil
}

// PrepareOutputFile creates the parent directory of filename. An empty name
// means stdout.
func PrepareOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %w", filename, ErrIsDirectory)
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0750)
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
