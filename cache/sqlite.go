package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteStore keeps entries in a private in-memory SQLite database.
// Values are stored as JSON arrays, which keeps their order.
type SQLiteStore struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteStore opens a new in-memory db.
// The db is never written to disk and is gone once the store is closed.
func NewSQLiteStore() (SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return SQLiteStore{}, fmt.Errorf("open sqlite: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sub_breeds (
		key TEXT PRIMARY KEY,
		sub_breeds TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return SQLiteStore{}, fmt.Errorf("create sub_breeds table: %w", err)
	}
	return SQLiteStore{
		db:         db,
		writeMutex: &sync.Mutex{},
	}, nil
}

func (s SQLiteStore) Get(key string) ([]string, bool, error) {
	var encoded string
	err := s.db.QueryRow("SELECT sub_breeds FROM sub_breeds WHERE key = ?", key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	subBreeds := make([]string, 0)
	if err := json.Unmarshal([]byte(encoded), &subBreeds); err != nil {
		return nil, false, fmt.Errorf("decode entry %q: %w", key, err)
	}
	return subBreeds, true, nil
}

func (s SQLiteStore) Put(key string, subBreeds []string) error {
	encoded, err := json.Marshal(clone(subBreeds))
	if err != nil {
		return err
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.Exec("INSERT OR REPLACE INTO sub_breeds (key, sub_breeds) VALUES (?, ?)", key, string(encoded))
	return err
}

func (s SQLiteStore) AllKeys(cb func(string)) error {
	rows, err := s.db.Query("SELECT key FROM sub_breeds ORDER BY key ASC")
	if err != nil {
		return err
	}
	// collect first, the single connection is held until rows are closed
	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return err
		}
		keys = append(keys, key)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, key := range keys {
		cb(key)
	}
	return nil
}

// Close releases the db. All entries are lost.
func (s SQLiteStore) Close() error {
	return s.db.Close()
}
