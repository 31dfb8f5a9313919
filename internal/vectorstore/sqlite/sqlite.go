// Package sqlite provides the persistent on-disk vector store. One
// database file lives in the configured directory; each manual gets
// its own chunks table keyed by collection name. Embeddings are stored
// as little-endian float64 blobs next to the chunk text and metadata.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

var collectionNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Storage is a SQLite-backed vector store. Search is brute-force
// cosine over the collection, restricted by the metadata filter before
// ranking.
type Storage struct {
	db         *sql.DB
	path       string
	collection string
	dimension  int
}

// NewStorage opens (or creates) the store database under dir. The
// collection name keys the chunks table and must be a plain
// identifier.
func NewStorage(dir, collection string) (*Storage, error) {
	if !collectionNameRe.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	if dir == "" {
		dir = "./vector_db"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	dbPath := filepath.Join(dir, "store.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Storage{db: db, path: dbPath, collection: collection}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Storage) Path() string { return s.path }

func (s *Storage) migrate() error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			chapter TEXT NOT NULL DEFAULT '',
			heading TEXT NOT NULL DEFAULT '',
			page INTEGER NOT NULL DEFAULT 0,
			embedding BLOB NOT NULL
		)`, s.collection),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_chapter ON %s(chapter)`, s.collection, s.collection),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`, s.collection),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}

// Init records the embedding dimension for the collection. A stored
// dimension from a previous ingestion must match, otherwise the
// collection has to be cleared and re-ingested.
func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	var stored int
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT value FROM %s_meta WHERE key = 'dimension'`, s.collection),
	).Scan(&stored)
	switch {
	case err == nil:
		if stored != dimension {
			return fmt.Errorf("collection %s has dimension %d, embedder produces %d", s.collection, stored, dimension)
		}
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec(
			fmt.Sprintf(`INSERT INTO %s_meta (key, value) VALUES ('dimension', ?)`, s.collection),
			dimension,
		); err != nil {
			return fmt.Errorf("storing dimension: %w", err)
		}
	default:
		return fmt.Errorf("reading dimension: %w", err)
	}
	s.dimension = dimension
	return nil
}

// Upsert writes all chunks and vectors in a single transaction so a
// failed ingestion never leaves a half-written collection behind.
func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, chunk_index, text, chapter, heading, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			chapter = excluded.chapter,
			heading = excluded.heading,
			page = excluded.page,
			embedding = excluded.embedding`, s.collection))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Index, c.Text, c.Chapter, c.Heading, c.Page,
			float64SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// Search loads the filtered candidate rows and ranks them by cosine
// similarity against the query vector.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int, filter domain.Filter) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	query := fmt.Sprintf(`SELECT id, chunk_index, text, chapter, heading, page, embedding FROM %s`, s.collection)
	var args []any
	var conds []string
	if filter.Chapter != "" {
		conds = append(conds, "chapter = ?")
		args = append(args, filter.Chapter)
	}
	if filter.Heading != "" {
		conds = append(conds, "heading = ?")
		args = append(args, filter.Heading)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Index, &c.Text, &c.Chapter, &c.Heading, &c.Page, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		results = append(results, domain.SearchResult{
			Chunk: c,
			Score: cosine(vector, bytesToFloat64Slice(blob)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of persisted chunks in the collection.
func (s *Storage) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.collection)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Clear removes every record of the collection, including the stored
// dimension, so the next ingestion starts fresh.
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.collection)); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s_meta`, s.collection)); err != nil {
		return fmt.Errorf("clear collection meta: %w", err)
	}
	return nil
}

func float64SliceToBytes(v []float64) []byte {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func bytesToFloat64Slice(data []byte) []float64 {
	out := make([]float64, len(data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return out
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
