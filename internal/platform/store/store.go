// Package store implements the chart store: the whole Document is held as a
// single serialized JSON value under one well-known key in an embedded
// SQLite key-value table. Every mutation round-trips the entire Document.
// That is not a scalable design, but at a few hundred records per practice
// it does not need to be.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/therascribe/therascribe/internal/model"
)

const (
	// DocumentKey is the well-known key holding the unified Document.
	DocumentKey = "database.db"

	// Legacy keys from before entities were unified into one Document.
	// Reconciled at load time when the unified key is absent.
	legacyPatientsKey = "patients"
	legacySessionsKey = "sessions"

	activePointerKey = "active_session"
)

// ErrVerification is returned by Save when the read-back check fails.
var ErrVerification = errors.New("store: written document failed read-back verification")

// Store persists the chart Document. Safe for the single-writer usage this
// application has; it does not implement any transaction discipline beyond
// writing the whole Document in one statement.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open creates (if needed) and opens the chart database in dataDir.
func Open(dataDir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "chart.db"))
	if err != nil {
		return nil, fmt.Errorf("open chart db: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing database handle. The kv table is created if
// missing. Used by tests with an in-memory database.
func NewWithDB(db *sql.DB, logger zerolog.Logger) (*Store, error) {
	s := &Store{db: db, logger: logger}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Load reads the Document. A missing or corrupt value yields an empty
// Document, never an error: the caller always gets something usable. When
// the unified key is absent, legacy per-entity keys are reconciled into the
// result so pre-unification data survives an upgrade.
func (s *Store) Load(ctx context.Context) (*model.Document, error) {
	raw, ok, err := s.get(ctx, DocumentKey)
	if err != nil {
		return nil, err
	}
	if ok {
		doc := &model.Document{}
		if err := json.Unmarshal([]byte(raw), doc); err != nil {
			s.logger.Error().Err(err).Msg("chart document is corrupt, starting empty")
			return emptyDocument(), nil
		}
		normalize(doc)
		return doc, nil
	}
	return s.loadLegacy(ctx), nil
}

func (s *Store) loadLegacy(ctx context.Context) *model.Document {
	doc := emptyDocument()
	if raw, ok, err := s.get(ctx, legacyPatientsKey); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &doc.Patients); err != nil {
			s.logger.Error().Err(err).Msg("legacy patients entry is corrupt, ignoring")
			doc.Patients = []model.Patient{}
		}
	}
	if raw, ok, err := s.get(ctx, legacySessionsKey); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &doc.Sessions); err != nil {
			s.logger.Error().Err(err).Msg("legacy sessions entry is corrupt, ignoring")
			doc.Sessions = []model.Session{}
		}
	}
	normalize(doc)
	return doc
}

// Save serializes the whole Document in a single write, then reads back and
// re-parses what was written. A blind write that silently truncates would
// poison every later Load, so a failed verification is reported as an error
// and the caller must treat the mutation as not persisted.
func (s *Store) Save(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("store: nil document")
	}
	normalize(doc)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := s.put(ctx, DocumentKey, string(payload)); err != nil {
		return err
	}

	// Read-back verification.
	raw, ok, err := s.get(ctx, DocumentKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !ok || raw != string(payload) {
		return ErrVerification
	}
	var check model.Document
	if err := json.Unmarshal([]byte(raw), &check); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	s.logger.Debug().
		Int("templates", len(check.Templates)).
		Int("patients", len(check.Patients)).
		Int("sessions", len(check.Sessions)).
		Msg("chart document saved")
	return nil
}

// SaveActivePointer persists the resume record for an in-progress session.
func (s *Store) SaveActivePointer(ctx context.Context, p *model.ActivePointer) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal active pointer: %w", err)
	}
	return s.put(ctx, activePointerKey, string(payload))
}

// LoadActivePointer returns the persisted resume record, or nil when none is
// set (or the stored value is corrupt).
func (s *Store) LoadActivePointer(ctx context.Context) (*model.ActivePointer, error) {
	raw, ok, err := s.get(ctx, activePointerKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	p := &model.ActivePointer{}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		s.logger.Error().Err(err).Msg("active session pointer is corrupt, clearing")
		return nil, nil
	}
	return p, nil
}

// ClearActivePointer removes the resume record.
func (s *Store) ClearActivePointer(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, activePointerKey)
	if err != nil {
		return fmt.Errorf("clear active pointer: %w", err)
	}
	return nil
}

func emptyDocument() *model.Document {
	return &model.Document{
		Templates: []model.Template{},
		Patients:  []model.Patient{},
		Sessions:  []model.Session{},
	}
}

// normalize keeps nil slices out of the Document so serialization is stable
// ("[]" rather than "null") and callers can range without nil checks.
func normalize(doc *model.Document) {
	if doc.Templates == nil {
		doc.Templates = []model.Template{}
	}
	if doc.Patients == nil {
		doc.Patients = []model.Patient{}
	}
	if doc.Sessions == nil {
		doc.Sessions = []model.Session{}
	}
}

// NewID generates an entity id as unix-milliseconds plus a random 4-digit
// suffix. Collisions are practically impossible without needing a
// centralized counter.
func NewID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	suffix := int64(0)
	if err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("%d_%04d", time.Now().UnixMilli(), suffix)
}
