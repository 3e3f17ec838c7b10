// Package bunstore persists the credential slot in a local SQLite database.
// The slot survives restarts; it is loaded once at open so reads stay
// synchronous, and every write goes through to disk.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// DefaultSlot is the slot name used when none is configured.
const DefaultSlot = "bearer_token"

const opTimeout = 5 * time.Second

type credentialRecord struct {
	bun.BaseModel `bun:"table:credentials,alias:cred"`

	Slot      string    `bun:"slot,pk"`
	Token     string    `bun:"token,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store is a durable credential slot backed by bun over SQLite.
type Store struct {
	db   *bun.DB
	slot string

	// cached mirrors the persisted value so Get stays synchronous. Guarded
	// by mu: the dispatcher reads from request goroutines while the
	// coordinator writes on login/logout.
	mu     sync.RWMutex
	cached string
}

// Open creates (if needed) and loads the slot from the SQLite file at path.
// Use slot "" for DefaultSlot; separate slots keep independent credentials
// (the identity provider cache uses its own) in one file.
func Open(path, slot string) (*Store, error) {
	if slot == "" {
		slot = DefaultSlot
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := db.NewCreateTable().
		Model((*credentialRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, slot: slot}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	record := new(credentialRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("slot = ?", s.slot).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.setCached("")
			return nil
		}
		return err
	}

	s.setCached(record.Token)
	return nil
}

func (s *Store) setCached(token string) {
	s.mu.Lock()
	s.cached = token
	s.mu.Unlock()
}

// Get returns the cached token; "" when the slot is empty.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

// Set writes the token through to disk and updates the cache.
func (s *Store) Set(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	record := &credentialRecord{
		Slot:      s.slot,
		Token:     token,
		UpdatedAt: time.Now().UTC(),
	}

	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (slot) DO UPDATE").
		Set("token = EXCLUDED.token").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return err
	}

	s.setCached(token)
	return nil
}

// Clear empties the slot on disk and in the cache.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("slot = ?", s.slot).
		Exec(ctx); err != nil {
		return err
	}

	s.setCached("")
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
