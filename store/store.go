// Package store caches decoded action lists in SQLite, keyed by the content
// of the action bytes they were decoded from.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tliron/commonlog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	_ "modernc.org/sqlite"

	"github.com/chazu/swfaction/avm1"
	"github.com/chazu/swfaction/listing"
)

// MemoryPath opens a private in-memory cache.
const MemoryPath = ":memory:"

var (
	// ErrNotFound indicates the key has no cached listing.
	ErrNotFound = errors.New("store: listing not found")

	// ErrCorrupt indicates a cached listing does not match its stored hash.
	ErrCorrupt = errors.New("store: listing corrupt")
)

// Store is a decode cache backed by an SQLite database. It is safe for
// concurrent use.
type Store struct {
	db  *sql.DB
	log commonlog.Logger
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS listings (
		key        BLOB PRIMARY KEY,
		version    INTEGER NOT NULL,
		hash       BLOB NOT NULL,
		data       BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating table: %w", err)
	}

	return &Store{db: db, log: commonlog.GetLogger("swfaction.store")}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key returns the cache key for an action stream decoded with opts. Every
// option that can change the decoded result is part of the key, with the
// decoder defaults applied first.
func Key(data []byte, opts avm1.Options) [32]byte {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = avm1.DefaultMaxDepth
	}
	var legacy string
	if opts.Version < avm1.UTF8Version {
		legacy = encodingName(opts.LegacyEncoding)
	}

	h := sha256.New()
	h.Write([]byte{opts.Version})
	h.Write(binary.LittleEndian.AppendUint64(nil, uint64(opts.MaxDepth)))
	h.Write(append([]byte(legacy), 0))
	h.Write(data)
	var key [32]byte
	h.Sum(key[:0])
	return key
}

// encodingName identifies enc by its WHATWG name. Encodings without one fall
// back to their type and printed form.
func encodingName(enc encoding.Encoding) string {
	if enc == nil {
		enc = avm1.DefaultLegacyEncoding
	}
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	return fmt.Sprintf("%T %v", enc, enc)
}

// Get returns the cached listing for key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key [32]byte) ([]avm1.Action, error) {
	var hash, data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT hash, data FROM listings WHERE key = ?", key[:],
	).Scan(&hash, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: querying listing: %w", err)
	}

	if sum := sha256.Sum256(data); string(sum[:]) != string(hash) {
		return nil, fmt.Errorf("%w: key %x", ErrCorrupt, key)
	}
	actions, err := listing.UnmarshalActions(data)
	if err != nil {
		return nil, fmt.Errorf("%w: key %x: %v", ErrCorrupt, key, err)
	}
	return actions, nil
}

// Put stores the listing for key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key [32]byte, version uint8, actions []avm1.Action) error {
	nodes := listing.FromActions(actions)
	data, err := listing.Marshal(nodes)
	if err != nil {
		return err
	}
	hash := sha256.Sum256(data)

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO listings (key, version, hash, data, created_at) VALUES (?, ?, ?, ?, ?)",
		key[:], int(version), hash[:], data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: saving listing: %w", err)
	}
	return nil
}

// Len returns the number of cached listings.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: counting listings: %w", err)
	}
	return n, nil
}

// Decode returns the cached listing for data when there is one. Otherwise it
// decodes data with d and caches the result. Decode errors are not cached.
func (s *Store) Decode(ctx context.Context, d *avm1.Decoder, data []byte) ([]avm1.Action, error) {
	opts := d.Options()
	key := Key(data, opts)

	actions, err := s.Get(ctx, key)
	switch {
	case err == nil:
		s.log.Debugf("hit %x", key[:8])
		return actions, nil
	case errors.Is(err, ErrCorrupt):
		s.log.Warningf("discarding %v", err)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	s.log.Debugf("miss %x", key[:8])
	actions, err = d.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := s.Put(ctx, key, opts.Version, actions); err != nil {
		return nil, err
	}
	return actions, nil
}
