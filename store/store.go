// Package store persists compiled programs in a content-addressed SQLite
// cache. Programs are keyed by the hash of their language and source text,
// so recompiling unchanged input is a lookup, and stored bytes are the
// canonical wire encoding.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/substrate-lang/substrate/instr"
)

// ErrNotFound indicates the requested program is not cached.
var ErrNotFound = errors.New("program not found")

// Store is the content-addressed compile cache.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the cache at the given path. ":memory:"
// gives a throwaway in-memory cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		hash TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		program BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating programs table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		started_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the content address for a (language, source) pair.
func Key(language, src string) [32]byte {
	h := sha256.New()
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(src))
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// Put stores a compiled program under its content address. Storing the same
// key twice is a no-op: content addressing makes the bytes identical.
func (s *Store) Put(key [32]byte, language string, prog *instr.Program) error {
	data, err := instr.Marshal(prog)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		"INSERT OR IGNORE INTO programs (hash, language, program, created_at) VALUES (?, ?, ?, ?)",
		hex.EncodeToString(key[:]), language, data, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing program: %w", err)
	}
	return nil
}

// Get loads the program stored under a content address.
func (s *Store) Get(key [32]byte) (*instr.Program, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT program FROM programs WHERE hash = ?",
		hex.EncodeToString(key[:]),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return instr.Unmarshal(data)
}

// Compile returns the cached program for (language, src), compiling and
// caching on a miss. The bool reports whether the cache served the program.
func (s *Store) Compile(language, src string, compile func(string) (*instr.Program, error)) (*instr.Program, bool, error) {
	key := Key(language, src)
	prog, err := s.Get(key)
	if err == nil {
		return prog, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	prog, err = compile(src)
	if err != nil {
		return nil, false, err
	}
	if err := s.Put(key, language, prog); err != nil {
		return nil, false, err
	}
	return prog, false, nil
}

// RecordRun logs one execution of a cached program and returns the run ID.
func (s *Store) RecordRun(key [32]byte) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, hash, started_at) VALUES (?, ?, ?)",
		id, hex.EncodeToString(key[:]), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}
