package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/spider/internal/model"
)

const (
	// DefaultFilePath is used when neither the tag nor the options name a file.
	DefaultFilePath = "data.txt"

	// DefaultSeparator separates columns.
	DefaultSeparator = '\t'
)

// FileOptions configures a File sink.
type FileOptions struct {
	// Path is the default output file.
	Path string

	// Separator separates columns. Zero means DefaultSeparator.
	Separator rune

	// CRLF ends lines with "\r\n" instead of "\n".
	CRLF bool
}

// File appends every matrix, header included, to a delimited text file.
// The tag, when set, is the file path.
type File struct {
	mu   sync.Mutex
	opts FileOptions
}

// NewFile creates a file sink.
func NewFile(opts FileOptions) (*File, error) {
	if opts.Path == "" {
		opts.Path = DefaultFilePath
	}
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	if opts.Separator == '"' || opts.Separator == '\r' || opts.Separator == '\n' {
		return nil, fmt.Errorf("invalid separator %q", opts.Separator)
	}
	return &File{opts: opts}, nil
}

// Save implements Sink.
func (f *File) Save(_ context.Context, matrix model.Matrix, tag string) (err error) {
	if err := checkMatrix(matrix); err != nil {
		return err
	}

	path := f.opts.Path
	if tag != "" {
		path = tag
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	w := csv.NewWriter(file)
	w.Comma = f.opts.Separator
	w.UseCRLF = f.opts.CRLF
	if err := w.WriteAll(matrix); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
