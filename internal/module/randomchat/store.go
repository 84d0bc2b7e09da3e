package randomchat

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the optional SQLite-backed persistence for a Dictionary: a
// single-file sqlite3 database opened by path, schema applied on open.
// The dictionary is one learned blob, so the schema is a single-row
// table keyed by a fixed id.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) a dictionary store at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary store: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate dictionary store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS dictionary (
		id   INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL
	)`)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted dictionary, or a fresh empty one if none has
// been saved yet.
func (s *Store) Load() (*Dictionary, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM dictionary WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return NewDictionary(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	dict, err := DictionaryFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	return dict, nil
}

// Save persists d, replacing whatever was previously stored.
func (s *Store) Save(d *Dictionary) error {
	_, err := s.db.Exec(`
		INSERT INTO dictionary (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data
	`, d.Bytes())
	if err != nil {
		return fmt.Errorf("save dictionary: %w", err)
	}
	return nil
}
