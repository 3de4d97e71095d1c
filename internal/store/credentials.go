package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Credentials is the persistent key-value store for the session: the bearer
// token under KeyToken and the JSON-encoded profile under KeyUser. It holds
// no logic beyond get/set/delete; interpretation belongs to the session layer.
//
// Backed by a small SQLite db so CLI and TUI processes can share it safely
// (WAL + busy_timeout, same setup as any local multi-process state here).
type Credentials struct {
	// Dir overrides the state directory (tests). Empty means ConfigDir().
	Dir string
}

const (
	KeyToken = "token"
	KeyUser  = "user"
)

const stateFileName = "state.sqlite"

func (c Credentials) statePath() (string, error) {
	dir := c.Dir
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

func (c Credentials) open(ctx context.Context) (*sql.DB, error) {
	path, err := c.statePath()
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness when CLI and TUI overlap.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Get returns the stored value and whether the key was present.
func (c Credentials) Get(ctx context.Context, key string) (string, bool, error) {
	db, err := c.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c Credentials) Set(ctx context.Context, key, value string) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(k, v) VALUES(?, ?)`, key, value)
	return err
}

func (c Credentials) Delete(ctx context.Context, key string) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// ClearSession removes token and user atomically so a crash mid-logout can
// never leave a token without its profile (or the reverse).
func (c Credentials) ClearSession(ctx context.Context) error {
	db, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, k := range []string{KeyToken, KeyUser} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}
