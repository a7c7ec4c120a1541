package common

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"hirescope/internal/errors"
	"hirescope/internal/utils"
)

// File is an input file read from disk.
type File struct {
	Path string
	Data []byte
}

// Name is the file's base name.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger}
}

// ReadFile reads a whole file, mapping failures onto IO errors.
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.CodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.CodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return data, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.PrepareOutputFile(filename); err != nil {
		return errors.NewIOError(errors.CodeFileWriteFailed,
			fmt.Sprintf("Cannot create directory for: %s", filename), err)
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.CodeFileWriteFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadFiles validates and reads multiple input files. maxSize,
// when positive, rejects larger files before reading them.
func (fp *FileProcessor) ValidateAndReadFiles(maxSize int64, filenames ...string) ([]File, error) {
	files := make([]File, 0, len(filenames))
	for _, filename := range filenames {
		size, err := utils.StatInputFile(filename, maxSize)
		switch {
		case stderrors.Is(err, utils.ErrTooLarge):
			return nil, errors.NewValidationError(errors.CodeFileTooLarge, err.Error(), err)
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.NewIOError(errors.CodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		case err != nil:
			return nil, errors.NewValidationError(errors.CodeInvalidRequest,
				fmt.Sprintf("Invalid file %s", filename), err)
		}

		data, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}

		fp.logger.Debug("Read input file", "file", filename, "size", utils.FormatFileSize(size))
		files = append(files, File{Path: filename, Data: data})
	}
	return files, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.PrepareOutputFile(filename); err != nil {
		return errors.NewValidationError(errors.CodeInvalidRequest,
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
