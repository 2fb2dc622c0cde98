package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"influencer-battle/models"
)

// ProfileCache keeps the last resolved user per id so a slow or failing
// profile lookup can still restore the right role.
type ProfileCache interface {
	Load(ctx context.Context, userID string) (*models.UserSession, error)
	Store(ctx context.Context, user models.UserSession) error
	Remove(ctx context.Context, userID string) error
}

const profileCacheSchema = `
CREATE TABLE IF NOT EXISTS profile_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteProfileCache is a ProfileCache in a local SQLite file.
type SQLiteProfileCache struct {
	db  *sqlx.DB
	now func() time.Time
}

// OpenSQLiteProfileCache opens (or creates) the cache at path. ":memory:"
// gives a private in-memory cache.
func OpenSQLiteProfileCache(path string) (*SQLiteProfileCache, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open profile cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(profileCacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init profile cache: %w", err)
	}
	return &SQLiteProfileCache{db: db, now: time.Now}, nil
}

func (c *SQLiteProfileCache) Close() error {
	return c.db.Close()
}

func profileCacheKey(userID string) string {
	return "battle_user_" + userID
}

// Load returns the cached user, or nil when nothing usable is stored.
func (c *SQLiteProfileCache) Load(ctx context.Context, userID string) (*models.UserSession, error) {
	var value string
	err := c.db.GetContext(ctx, &value, `SELECT value FROM profile_cache WHERE key = ?`, profileCacheKey(userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile cache: %w", err)
	}

	var user models.UserSession
	if err := json.Unmarshal([]byte(value), &user); err != nil {
		return nil, nil
	}
	if user.ID != userID {
		return nil, nil
	}
	return &user, nil
}

func (c *SQLiteProfileCache) Store(ctx context.Context, user models.UserSession) error {
	value, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO profile_cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		profileCacheKey(user.ID), string(value), c.now().Unix())
	if err != nil {
		return fmt.Errorf("write profile cache: %w", err)
	}
	return nil
}

func (c *SQLiteProfileCache) Remove(ctx context.Context, userID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM profile_cache WHERE key = ?`, profileCacheKey(userID))
	return err
}
