// Package archive opens and creates line files that may be compressed or
// bundled in a tar archive. Supported inputs are plain files, .xz and .gz
// streams, and .tar, .tar.gz and .tar.xz bundles holding a single line file.
package archive

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/pedigree/core/errors"
)

// Compression identifies the outer encoding of a file.
type Compression int

const (
	None Compression = iota
	Gzip
	XZ
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case XZ:
		return "xz"
	}
	return "none"
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	xzMagic   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// memberExts are the bundle members Open will pick, in preference order.
var memberExts = []string{".ged", ".gedcom", ".xml"}

// Detect sniffs the compression of a stream from its first bytes.
func Detect(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, xzMagic):
		return XZ
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip
	}
	return None
}

// Reader is an opened input. Name is the logical file name after
// decompression, with compression suffixes removed and, for bundles, the
// selected member's name.
type Reader struct {
	io.Reader
	Name        string
	Compression Compression

	file         *os.File
	decompressor io.Closer
}

// Open opens path, transparently decompressing xz and gzip content and
// selecting the line file inside tar bundles. Compression is detected from
// the content, not the extension.
func Open(p string) (*Reader, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.NewIO("open", p, err)
	}

	br := bufio.NewReader(f)
	head, _ := br.Peek(len(xzMagic))
	r := &Reader{file: f, Compression: Detect(head), Name: stripCompression(path.Base(p))}

	switch r.Compression {
	case XZ:
		xzr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("xz reader", p, err)
		}
		r.Reader = xzr
	case Gzip:
		gzr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("gzip reader", p, err)
		}
		r.Reader = gzr
		r.decompressor = gzr
	default:
		r.Reader = br
	}

	if strings.HasSuffix(r.Name, ".tar") {
		member, name, err := selectMember(tar.NewReader(r.Reader))
		if err != nil {
			r.Close()
			return nil, errors.Wrapf(err, "bundle %s", p)
		}
		r.Reader = member
		r.Name = name
	}
	return r, nil
}

// Close closes the decompressor and the underlying file.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

func stripCompression(name string) string {
	for _, ext := range []string{".xz", ".gz"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	if strings.HasSuffix(name, ".tgz") {
		return strings.TrimSuffix(name, ".tgz") + ".tar"
	}
	return name
}

// selectMember advances tr to the first regular file with a line-file
// extension. Directories and other members are skipped.
func selectMember(tr *tar.Reader) (io.Reader, string, error) {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, "", errors.NewNotFound("line file", "tar member")
		}
		if err != nil {
			return nil, "", fmt.Errorf("read header: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if IsLineFile(hdr.Name) {
			return tr, path.Base(hdr.Name), nil
		}
	}
}

// IsLineFile reports whether name has a line-file or XML extension.
func IsLineFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range memberExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Format returns "xml" for XML interchange files and "ged" otherwise.
func Format(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".xml") {
		return "xml"
	}
	return "ged"
}
