package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS session_data (
	key TEXT NOT NULL PRIMARY KEY,
	value BLOB
)`

type SQLiteSession struct {
	db   *sql.DB
	lock sync.RWMutex
}

// NewSQLiteSession opens (creating if needed) the database file for the given session below dir.
func NewSQLiteSession(dir, sessionID string) (*SQLiteSession, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", getDatabaseConn(getDatabasePath(dir, sessionID)))
	if err != nil {
		return nil, err
	}

	// SQLite prefers a single writer; Update relies on holding the only connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	return &SQLiteSession{db: db}, nil
}

func (s *SQLiteSession) Load(key string) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return load(s.db, key)
}

func (s *SQLiteSession) Save(key string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return save(s.db, key, data)
}

func (s *SQLiteSession) Update(key string, fn func([]byte) ([]byte, error)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.wrapTx(func(tx *sql.Tx) error {
		data, err := load(tx, key)
		if err != nil {
			return err
		}

		res, err := fn(data)
		if err != nil {
			return err
		}

		return save(tx, key, res)
	})
}

func (s *SQLiteSession) Close() error {
	return s.db.Close()
}

func (s *SQLiteSession) wrapTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			logrus.WithError(rerr).Error("Failed to rollback session transaction")
		}

		return err
	}

	return tx.Commit()
}

type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func load(q queryer, key string) ([]byte, error) {
	var data []byte

	if err := q.QueryRow("SELECT value FROM session_data WHERE key = ?", key).Scan(&data); errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return data, nil
}

func save(q queryer, key string, data []byte) error {
	_, err := q.Exec(
		"INSERT INTO session_data (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, data,
	)

	return err
}

func getDatabasePath(dir, sessionID string) string {
	return filepath.Join(dir, fmt.Sprintf("%v.db", sessionID))
}

func getDatabaseConn(path string) string {
	return fmt.Sprintf("file:%v?_journal_mode=WAL&_busy_timeout=5000", path)
}

type SQLiteSessionBuilder struct{}

func (*SQLiteSessionBuilder) New(dir, sessionID string, _ []byte) (Backend, error) {
	return NewSQLiteSession(dir, sessionID)
}

func (*SQLiteSessionBuilder) Delete(dir, sessionID string) error {
	path := getDatabasePath(dir, sessionID)

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.RemoveAll(path + suffix); err != nil {
			return err
		}
	}

	return nil
}
