package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	libdb "fieldbook/libs/db"
)

const createSessionStateTable = `
	CREATE TABLE IF NOT EXISTS session_state (
		profile    TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (profile, key)
	)
`

// SQLStore keeps values in the session_state table of postgres or sqlite.
type SQLStore struct {
	db      *sql.DB
	driver  string
	profile string
}

// NewSQLStore ensures the schema exists and returns the store.
func NewSQLStore(ctx context.Context, db *sql.DB, driver, profile string) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createSessionStateTable); err != nil {
		return nil, fmt.Errorf("storage: create session_state: %w", err)
	}
	return &SQLStore{db: db, driver: driver, profile: profile}, nil
}

// Get implements Storage.
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `
		SELECT value
		FROM session_state
		WHERE profile = $1 AND key = $2
	`
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(query), s.profile, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements Storage.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO session_state (profile, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (profile, key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, s.rebind(query), s.profile, key, value, time.Now().UTC())
	return err
}

// Remove implements Storage.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	const query = `DELETE FROM session_state WHERE profile = $1 AND key = $2`
	_, err := s.db.ExecContext(ctx, s.rebind(query), s.profile, key)
	return err
}

// rebind turns $n placeholders into ? for sqlite.
func (s *SQLStore) rebind(query string) string {
	if s.driver != libdb.DriverSQLite {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if j > i+1 {
				if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
					b.WriteByte('?')
					i = j - 1
					continue
				}
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
