package export

// schema is applied idempotently before every export. Each export gets its
// own id so several files, or several versions of one file, can share a
// database.
const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	sha256      TEXT NOT NULL,
	blake3      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	records     INTEGER NOT NULL,
	individuals INTEGER NOT NULL,
	families    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
	export_id TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	seq       INTEGER NOT NULL,
	xref      TEXT,
	kind      TEXT NOT NULL,
	tag       TEXT NOT NULL,
	sha256    TEXT NOT NULL,
	PRIMARY KEY (export_id, seq)
);

CREATE TABLE IF NOT EXISTS lines (
	export_id TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	id        INTEGER NOT NULL,
	parent_id INTEGER,
	record    INTEGER NOT NULL,
	seq       INTEGER NOT NULL,
	level     INTEGER NOT NULL,
	xref      TEXT,
	tag       TEXT NOT NULL,
	value     TEXT,
	PRIMARY KEY (export_id, id)
);

CREATE TABLE IF NOT EXISTS individuals (
	export_id  TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	xref       TEXT NOT NULL,
	given      TEXT,
	surname    TEXT,
	sex        TEXT,
	birth_year INTEGER,
	death_year INTEGER,
	PRIMARY KEY (export_id, xref)
);

CREATE TABLE IF NOT EXISTS family_members (
	export_id  TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	family     TEXT NOT NULL,
	individual TEXT NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('husband', 'wife', 'child')),
	seq        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dangling (
	export_id TEXT NOT NULL REFERENCES exports(id) ON DELETE CASCADE,
	owner     TEXT NOT NULL,
	tag       TEXT NOT NULL,
	xref      TEXT NOT NULL,
	reason    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_parent ON lines(export_id, parent_id);
CREATE INDEX IF NOT EXISTS idx_members_family ON family_members(export_id, family);
CREATE INDEX IF NOT EXISTS idx_members_individual ON family_members(export_id, individual);
`

// tables lists the per-export tables in the order Counts reports them.
var tables = []string{"records", "lines", "individuals", "family_members", "dangling"}
