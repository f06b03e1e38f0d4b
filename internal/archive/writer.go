package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Writer is an output file that compresses according to its extension.
type Writer struct {
	io.Writer
	file       *os.File
	compressor io.WriteCloser
}

// Create creates path, compressing with xz for .xz and gzip for .gz.
// Parent directories are created as needed.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := &Writer{Writer: f, file: f}
	switch {
	case strings.HasSuffix(path, ".xz"):
		xzw, err := xz.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w.Writer, w.compressor = xzw, xzw
	case strings.HasSuffix(path, ".gz"):
		gzw := gzip.NewWriter(f)
		w.Writer, w.compressor = gzw, gzw
	}
	return w, nil
}

// Close flushes the compressor and closes the file.
func (w *Writer) Close() error {
	var first error
	if w.compressor != nil {
		first = w.compressor.Close()
	}
	if err := w.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
