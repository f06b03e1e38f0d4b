// Package cas fingerprints content with SHA-256 and BLAKE3.
// Both digests are lowercase hex; SHA-256 is the primary identity and
// BLAKE3 the fast secondary used for change detection.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/pedigree/core/gedcom"
)

// HashResult contains both SHA-256 and BLAKE3 hashes of a blob.
type HashResult struct {
	SHA256 string `json:"sha256"`
	BLAKE3 string `json:"blake3"`
}

// hashPattern matches a lowercase 256-bit hex digest.
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Sum hashes data with both algorithms.
func Sum(data []byte) HashResult {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return HashResult{
		SHA256: hex.EncodeToString(s[:]),
		BLAKE3: hex.EncodeToString(b[:]),
	}
}

// SumReader hashes a stream with both algorithms in one pass and returns the
// number of bytes read.
func SumReader(r io.Reader) (HashResult, int64, error) {
	s := sha256.New()
	b := blake3.New()
	n, err := io.Copy(io.MultiWriter(s, b), r)
	if err != nil {
		return HashResult{}, n, fmt.Errorf("failed to hash stream: %w", err)
	}
	return HashResult{
		SHA256: hex.EncodeToString(s.Sum(nil)),
		BLAKE3: hex.EncodeToString(b.Sum(nil)),
	}, n, nil
}

// Hash returns the SHA-256 hex digest of data.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Blake3Hash returns the BLAKE3 hex digest of data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// RecordHash fingerprints a record by its emitted line text, sub-lines
// included. Two records with identical content hash the same regardless of
// where they sit in the file.
func RecordHash(rec *gedcom.Record) HashResult {
	return Sum([]byte(rec.Gedcom()))
}

// IsValidHash reports whether s is a lowercase 64-character hex digest.
func IsValidHash(s string) bool {
	return hashPattern.MatchString(s)
}

// Verify reports whether data matches the expected SHA-256 digest.
func Verify(data []byte, sha string) bool {
	return IsValidHash(sha) && Hash(data) == sha
}
