package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/codec"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS collections (
	name       TEXT PRIMARY KEY,
	schema     BLOB,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
);
`

// NewSQLiteBackend creates a backend persisting to a SQLite database at
// the given path. Document bodies are stored as blobs encoded with the
// given codec (json when nil). The schema is created on first use.
func NewSQLiteBackend(path string, c codec.ICodec) (IBackend, error) {
	if c == nil {
		c = codec.NewJSONCodec()
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must be
	// pinned to a single one or every query could see a different db.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &sqliteBackendImpl{db: db, codec: c}, nil
}

// sqliteBackendImpl implements the IBackend interface on a SQLite
// database with one row per document body.
type sqliteBackendImpl struct {
	db    *sql.DB
	codec codec.ICodec
}

// --------------------------------------------------------------------------
// Interface Methods (docu see backend.IBackend)
// --------------------------------------------------------------------------

func (s *sqliteBackendImpl) EnsureCollection(name string, schema []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO collections (name, schema, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET schema = excluded.schema`,
		name, schema, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to register collection: %w", err)
	}
	return nil
}

func (s *sqliteBackendImpl) Collections() (map[string][]byte, error) {
	rows, err := s.db.Query(`SELECT name, schema FROM collections`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var name string
		var schema []byte
		if err := rows.Scan(&name, &schema); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		out[name] = schema
	}
	return out, rows.Err()
}

func (s *sqliteBackendImpl) Insert(collection, id string, doc document.Document) error {
	return s.upsert(collection, id, doc)
}

func (s *sqliteBackendImpl) Update(collection, id string, doc document.Document) error {
	return s.upsert(collection, id, doc)
}

func (s *sqliteBackendImpl) upsert(collection, id string, doc document.Document) error {
	body, err := s.codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, body, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

func (s *sqliteBackendImpl) Delete(collection, id string) error {
	_, err := s.db.Exec(
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *sqliteBackendImpl) FindByID(collection, id string) (document.Document, bool, error) {
	var body []byte
	err := s.db.QueryRow(
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}

	var doc document.Document
	if err := s.codec.Decode(body, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, true, nil
}

func (s *sqliteBackendImpl) ListDocuments(collection string) (map[string]document.Document, error) {
	rows, err := s.db.Query(
		`SELECT id, body FROM documents WHERE collection = ?`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]document.Document)
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		var doc document.Document
		if err := s.codec.Decode(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		out[id] = doc
	}
	return out, rows.Err()
}

func (s *sqliteBackendImpl) Close() error {
	return s.db.Close()
}
