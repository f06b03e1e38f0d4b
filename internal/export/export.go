// Package export projects a built tree into SQLite tables for ad-hoc SQL
// over records, lines, individuals and family membership.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/pedigree/core/cas"
	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
	"github.com/FocuswithJustin/pedigree/internal/logging"
)

// Source identifies the file a tree was built from.
type Source struct {
	Path string
	Hash cas.HashResult
}

// Summary reports what one export wrote.
type Summary struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	SHA256      string        `json:"sha256"`
	BLAKE3      string        `json:"blake3"`
	Records     int           `json:"records"`
	Lines       int           `json:"lines"`
	Individuals int           `json:"individuals"`
	Families    int           `json:"families"`
	Members     int           `json:"family_members"`
	Dangling    int           `json:"dangling"`
	Duration    time.Duration `json:"duration"`
}

// Export writes tree into db under a fresh export id. Everything is written
// in one transaction; on error nothing is kept.
func Export(ctx context.Context, db *sql.DB, tree *gedcom.Tree, src Source) (*Summary, error) {
	start := time.Now()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := &Summary{
		ID:          uuid.NewString(),
		Source:      src.Path,
		SHA256:      src.Hash.SHA256,
		BLAKE3:      src.Hash.BLAKE3,
		Records:     len(tree.Records()),
		Individuals: len(tree.Individuals()),
		Families:    len(tree.Families()),
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (id, source, sha256, blake3, created_at, records, individuals, families)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Source, s.SHA256, s.BLAKE3, start.UTC().Format(time.RFC3339),
		s.Records, s.Individuals, s.Families); err != nil {
		return nil, fmt.Errorf("failed to insert export: %w", err)
	}

	w := &writer{tx: tx, id: s.ID}
	defer w.close()
	for _, step := range []func(context.Context, *gedcom.Tree, *Summary) error{
		w.records,
		w.individuals,
		w.members,
		w.dangling,
	} {
		if err := step(ctx, tree, s); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit export: %w", err)
	}
	s.Duration = time.Since(start)
	logging.ExportCompleted(ctx, s.ID, s.Source, s.Duration,
		"records", s.Records, "lines", s.Lines, "dangling", s.Dangling)
	return s, nil
}

// writer holds the prepared statements of one export transaction.
type writer struct {
	tx    *sql.Tx
	id    string
	stmts []*sql.Stmt
}

func (w *writer) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	stmt, err := w.tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	w.stmts = append(w.stmts, stmt)
	return stmt, nil
}

func (w *writer) close() {
	for _, s := range w.stmts {
		s.Close()
	}
}

func (w *writer) records(ctx context.Context, tree *gedcom.Tree, s *Summary) error {
	recStmt, err := w.prepare(ctx,
		`INSERT INTO records (export_id, seq, xref, kind, tag, sha256) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	lineStmt, err := w.prepare(ctx,
		`INSERT INTO lines (export_id, id, parent_id, record, seq, level, xref, tag, value)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	ids := make(map[*gedcom.Line]int64)
	var next int64
	for seq, rec := range tree.Records() {
		if _, err := recStmt.ExecContext(ctx, w.id, seq, nullable(rec.Xref()), rec.Type(), rec.Tag(),
			cas.RecordHash(rec).SHA256); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", seq, err)
		}

		var walkErr error
		rec.Walk(func(l *gedcom.Line) bool {
			next++
			ids[l] = next
			var parent any
			childSeq := 0
			if p := l.Parent(); p != nil {
				parent = ids[p]
				childSeq = indexOf(p.Children(), l)
			}
			if _, err := lineStmt.ExecContext(ctx, w.id, next, parent, seq, childSeq,
				l.Level(), nullable(l.Xref()), l.Tag(), nullable(l.Value())); err != nil {
				walkErr = fmt.Errorf("failed to insert line %d: %w", next, err)
				return false
			}
			return true
		})
		if walkErr != nil {
			return walkErr
		}
	}
	s.Lines = int(next)
	return nil
}

func (w *writer) individuals(ctx context.Context, tree *gedcom.Tree, _ *Summary) error {
	stmt, err := w.prepare(ctx,
		`INSERT INTO individuals (export_id, xref, given, surname, sex, birth_year, death_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, ind := range tree.Individuals() {
		// Ambiguous singular values are stored as NULL; the lines table keeps them all.
		var given, surname, sex any
		if n, err := ind.Name(); err == nil {
			given, surname = nullable(n.Given), nullable(n.Surname)
		}
		if v, err := ind.Sex(); err == nil {
			sex = nullable(v)
		}
		if _, err := stmt.ExecContext(ctx, w.id, ind.Xref(), given, surname, sex,
			year(ind.BirthYear()), year(ind.DeathYear())); err != nil {
			return fmt.Errorf("failed to insert individual %s: %w", ind.Xref(), err)
		}
	}
	return nil
}

func (w *writer) members(ctx context.Context, tree *gedcom.Tree, s *Summary) error {
	stmt, err := w.prepare(ctx,
		`INSERT INTO family_members (export_id, family, individual, role, seq) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, fam := range tree.Families() {
		groups := []struct {
			role    string
			members []*gedcom.Individual
		}{
			{"husband", fam.Husbands()},
			{"wife", fam.Wives()},
			{"child", fam.Children()},
		}
		for _, g := range groups {
			for seq, ind := range g.members {
				if _, err := stmt.ExecContext(ctx, w.id, fam.Xref(), ind.Xref(), g.role, seq); err != nil {
					return fmt.Errorf("failed to insert member of %s: %w", fam.Xref(), err)
				}
				s.Members++
			}
		}
	}
	return nil
}

func (w *writer) dangling(ctx context.Context, tree *gedcom.Tree, s *Summary) error {
	stmt, err := w.prepare(ctx,
		`INSERT INTO dangling (export_id, owner, tag, xref, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, d := range tree.Dangling() {
		if _, err := stmt.ExecContext(ctx, w.id, d.Owner, d.Tag, d.Xref, d.Reason); err != nil {
			return fmt.Errorf("failed to insert dangling reference: %w", err)
		}
		s.Dangling++
	}
	return nil
}

// Counts returns the row count of every per-export table for exportID.
func Counts(ctx context.Context, db *sql.DB, exportID string) (map[string]int, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exports WHERE id = ?`, exportID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up export: %w", err)
	}
	if exists == 0 {
		return nil, errors.NewNotFound("export", exportID)
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		// table names come from the fixed list above
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE export_id = ?`, table)
		if err := db.QueryRowContext(ctx, q, exportID).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func year(y int, err error) any {
	if err != nil || y == gedcom.NoYear {
		return nil
	}
	return y
}

func indexOf(lines []*gedcom.Line, l *gedcom.Line) int {
	for i, c := range lines {
		if c == l {
			return i
		}
	}
	return -1
}
