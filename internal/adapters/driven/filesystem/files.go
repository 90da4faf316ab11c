// Package filesystem reads uploads from local paths and watches drop folders.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
)

// MaxFileSize is the largest file ReadFiles accepts.
const MaxFileSize = 50 << 20

// ErrFileTooLarge is returned for files above MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// ReadFiles loads paths as uploads. Unreadable paths are reported as
// failures so the rest can still be ingested.
func ReadFiles(paths []string) ([]domain.UploadedFile, []domain.IngestFailure) {
	files := make([]domain.UploadedFile, 0, len(paths))
	var failures []domain.IngestFailure

	for _, path := range paths {
		file, err := ReadFile(path)
		if err != nil {
			failures = append(failures, domain.IngestFailure{Filename: filepath.Base(path), Err: err})
			continue
		}
		files = append(files, file)
	}
	return files, failures
}

// ReadFile loads one path as an upload.
func ReadFile(path string) (domain.UploadedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.UploadedFile{}, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	if info.Size() > MaxFileSize {
		return domain.UploadedFile{}, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrFileTooLarge)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	return domain.UploadedFile{
		Filename: filepath.Base(path),
		Content:  content,
	}, nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
