package cache

import (
	"database/sql"
	"sync"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteCache is a provider backed by an SQLite database.
// Entries survive process restarts when backed by a file, which is what makes
// clearing the cache at startup an observable operation.
type SQLiteCache struct {
	db         *sql.DB
	writeMutex *sync.Mutex
}

// NewSQLiteCache creates a new cache with the given filename as the db.
// If the file name is empty, a new in-memory db is opened.
func NewSQLiteCache(filename string) SQLiteCache {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("CREATE TABLE IF NOT EXISTS cache (key TEXT PRIMARY KEY, bytes BLOB)")
	if err != nil {
		panic(err)
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		panic(err)
	}
	return SQLiteCache{
		db:         db,
		writeMutex: &sync.Mutex{},
	}
}

func (s SQLiteCache) Get(key string) (Entry, bool, error) {
	var bytes []byte
	err := s.db.QueryRow("SELECT bytes FROM cache WHERE key = ?", key).Scan(&bytes)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	entry, err := bytesToEntry(bytes)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (s SQLiteCache) Put(key string, entry Entry) error {
	bytes, err := entryToBytes(entry)
	if err != nil {
		return err
	}
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err = s.db.Exec("INSERT OR REPLACE INTO cache (key, bytes) VALUES (?, ?)", key, bytes)
	return err
}

func (s SQLiteCache) Clear() error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()
	_, err := s.db.Exec("DELETE FROM cache")
	return err
}

func (s SQLiteCache) Len() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM cache").Scan(&count)
	return count, err
}

func (s SQLiteCache) Close() error {
	return s.db.Close()
}
