// Package sqliteexternal links the CGO SQLite driver (github.com/mattn/go-sqlite3).
//
// It is only compiled with the cgo_sqlite build tag; core/sqlite imports it
// in that mode and otherwise uses the pure Go modernc.org/sqlite driver:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/pedigree
//
// The CGO driver is faster on large exports but gives up cross-compilation
// and single static binaries.
package sqliteexternal
