// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus selects the part of a document's database text that goes
// into each section prompt. Text within the budget is passed through whole.
// Larger text is split into chunks and indexed in an in-memory SQLite
// full-text table for the lifetime of the session; each section then gets
// the chunks that best match its name and the document title.
package corpus

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/docforge/pkg/types"
)

const defaultChunkChars = 1200

// Index serves excerpts of one database text.
type Index struct {
	full     string
	maxChars int
	db       *sql.DB
	fts5     bool
	chunks   int
	logger   *zap.Logger
}

// New prepares an index over text. The SQLite table is only built when the
// text exceeds cfg.MaxChars; Close must be called either way.
func New(text string, cfg types.ContextConfig, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &Index{full: text, maxChars: cfg.MaxChars, logger: logger}
	if cfg.MaxChars <= 0 || len(text) <= cfg.MaxChars {
		return idx, nil
	}

	size := cfg.ChunkChars
	if size <= 0 {
		size = defaultChunkChars
	}
	if size > cfg.MaxChars {
		size = cfg.MaxChars
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening corpus index: %w", err)
	}
	// Every pooled connection to :memory: would be a separate database.
	db.SetMaxOpenConns(1)
	idx.db = db

	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating corpus schema: %w", err)
	}
	chunks := splitChunks(text, size)
	if err := idx.insert(chunks); err != nil {
		db.Close()
		return nil, err
	}
	idx.chunks = len(chunks)
	logger.Debug("indexed database text",
		zap.Int("chars", len(text)),
		zap.Int("chunks", len(chunks)),
		zap.Bool("fts5", idx.fts5),
	)
	return idx, nil
}

// createSchema prefers FTS5 and falls back to FTS4 when the driver was
// built without the sqlite_fts5 tag.
func (x *Index) createSchema() error {
	if _, err := x.db.Exec(`CREATE VIRTUAL TABLE chunks USING fts5(heading, body, seq UNINDEXED)`); err == nil {
		x.fts5 = true
		return nil
	}
	if _, err := x.db.Exec(`CREATE VIRTUAL TABLE chunks USING fts4(heading, body, seq, notindexed=seq)`); err != nil {
		return err
	}
	return nil
}

func (x *Index) insert(chunks []chunk) error {
	tx, err := x.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning corpus insert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO chunks(heading, body, seq) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing corpus insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range chunks {
		if _, err := stmt.Exec(c.heading, c.body, c.seq); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting chunk %d: %w", c.seq, err)
		}
	}
	return tx.Commit()
}

// Indexed reports whether the text was split and indexed.
func (x *Index) Indexed() bool { return x.db != nil }

// Chunks returns the number of indexed chunks.
func (x *Index) Chunks() int { return x.chunks }

// Close releases the in-memory database.
func (x *Index) Close() error {
	if x.db == nil {
		return nil
	}
	return x.db.Close()
}

// Excerpt returns database text relevant to query, at most MaxChars long.
// Matching chunks are taken best first and emitted in document order. When
// nothing matches, the opening chunks are used.
func (x *Index) Excerpt(query string) (string, error) {
	if x.db == nil {
		return x.full, nil
	}

	var matched []chunk
	if q := matchQuery(query); q != "" {
		var err error
		matched, err = x.search(q)
		if err != nil {
			return "", err
		}
	}
	if len(matched) == 0 {
		all, err := x.ordered()
		if err != nil {
			return "", err
		}
		matched = all
	}

	picked := x.fit(matched)
	sort.Slice(picked, func(i, j int) bool { return picked[i].seq < picked[j].seq })

	parts := make([]string, len(picked))
	for i, c := range picked {
		parts[i] = c.text()
	}
	out := strings.Join(parts, "\n\n")
	x.logger.Debug("selected excerpt",
		zap.String("query", query),
		zap.Int("matched", len(matched)),
		zap.Int("picked", len(picked)),
		zap.Int("chars", len(out)),
	)
	return out, nil
}

// fit takes chunks in the given order until the budget is spent. The first
// chunk is truncated if it alone exceeds the budget, and then fills it.
func (x *Index) fit(chunks []chunk) []chunk {
	var picked []chunk
	used := 0
	for _, c := range chunks {
		n := len(c.text())
		if len(picked) > 0 {
			n += 2
		}
		if used+n > x.maxChars {
			if len(picked) == 0 {
				c.body = truncate(c.text(), x.maxChars)
				c.heading = ""
				return append(picked, c)
			}
			continue
		}
		picked = append(picked, c)
		used += n
	}
	return picked
}

func (x *Index) search(q string) ([]chunk, error) {
	query := `SELECT heading, body, seq FROM chunks WHERE chunks MATCH ? ORDER BY CAST(seq AS INTEGER)`
	if x.fts5 {
		query = `SELECT heading, body, seq FROM chunks WHERE chunks MATCH ? ORDER BY rank`
	}
	rows, err := x.db.Query(query, q)
	if err != nil {
		return nil, fmt.Errorf("searching corpus: %w", err)
	}
	return scanChunks(rows)
}

func (x *Index) ordered() ([]chunk, error) {
	rows, err := x.db.Query(`SELECT heading, body, seq FROM chunks ORDER BY CAST(seq AS INTEGER)`)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return scanChunks(rows)
}

func scanChunks(rows *sql.Rows) ([]chunk, error) {
	defer rows.Close()
	var out []chunk
	for rows.Next() {
		var c chunk
		if err := rows.Scan(&c.heading, &c.body, &c.seq); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
