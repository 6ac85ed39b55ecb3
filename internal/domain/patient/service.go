// Package patient manages the patient roster: an in-memory cache over the
// chart store with CRUD, a change feed, and display-field derivation.
package patient

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/feed"
	"github.com/therascribe/therascribe/internal/platform/store"
)

// ChartStore is the slice of the store this service needs.
type ChartStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

// SessionMarker flags a deleted patient's sessions so list views can skip
// them without another existence probe. Implemented by the session service.
type SessionMarker interface {
	MarkPatientDeleted(ctx context.Context, patientID string) error
}

type Service struct {
	store  ChartStore
	logger zerolog.Logger
	feed   feed.Feed
	marker SessionMarker
	now    func() time.Time

	// mu guards patients; handlers run one goroutine per request.
	mu       sync.RWMutex
	patients []model.Patient
}

// NewService loads the current patient roster into the cache.
func NewService(ctx context.Context, st ChartStore, logger zerolog.Logger) (*Service, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	return &Service{
		store:    st,
		logger:   logger,
		patients: doc.Patients,
		now:      time.Now,
	}, nil
}

// SetSessionMarker attaches an optional SessionMarker to the service.
func (s *Service) SetSessionMarker(m SessionMarker) {
	s.marker = m
}

// List returns a copy of the cached roster.
func (s *Service) List() []model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Get returns a copy of the patient, or nil if the id is unknown.
func (s *Service) Get(id string) *model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		p := s.patients[idx]
		return &p
	}
	return nil
}

// Add assigns an id and persists the new patient. The cache is committed
// and subscribers notified only after the store accepts the write.
func (s *Service) Add(ctx context.Context, p model.Patient) (*model.Patient, error) {
	p.ID = store.NewID()
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	syncLegacyDiagnosis(&p)

	s.mu.Lock()
	next := append(s.listLocked(), p)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.patients = next
	s.mu.Unlock()

	s.feed.Notify()
	return &p, nil
}

// Update shallow-merges the set fields of partial into the stored patient.
// Returns nil, nil when the id is unknown.
func (s *Service) Update(ctx context.Context, id string, partial Partial) (*model.Patient, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, nil
	}

	next := s.listLocked()
	merged := partial.apply(next[idx])
	merged.UpdatedAt = s.now()
	syncLegacyDiagnosis(&merged)
	next[idx] = merged

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.patients = next
	s.mu.Unlock()

	s.feed.Notify()
	return &merged, nil
}

// Delete removes the patient. Sessions referencing the patient stay behind
// (soft orphan); when a SessionMarker is attached they are flagged so read
// paths can skip them cheaply.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := s.listLocked()
	next = append(next[:idx], next[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.patients = next
	s.mu.Unlock()

	s.feed.Notify()

	if s.marker != nil {
		if err := s.marker.MarkPatientDeleted(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("patient_id", id).Msg("failed to mark orphaned sessions")
		}
	}
	return true, nil
}

// Subscribe registers a change callback. The callback fires once
// immediately so a late subscriber does not wait for the next mutation to
// sync.
func (s *Service) Subscribe(fn func()) func() {
	unsub := s.feed.Subscribe(fn)
	fn()
	return unsub
}

// listLocked copies the roster; callers hold mu.
func (s *Service) listLocked() []model.Patient {
	out := make([]model.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

func (s *Service) indexLocked(id string) int {
	for i := range s.patients {
		if s.patients[i].ID == id {
			return i
		}
	}
	return -1
}

// persist round-trips the whole Document with the updated roster. The
// caller commits its cache only when this succeeds, so a failed save never
// leaves memory and disk disagreeing.
func (s *Service) persist(ctx context.Context, patients []model.Patient) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("persist patients: %w", err)
	}
	doc.Patients = patients
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist patients: %w", err)
	}
	return nil
}

// syncLegacyDiagnosis mirrors the primary diagnosis into the legacy
// singular fields older display code still reads.
func syncLegacyDiagnosis(p *model.Patient) {
	if primary := p.PrimaryDiagnosis(); primary != nil {
		p.ICDCode = primary.Code
		p.Diagnosis = primary.Name
	}
}

// Initial returns the display initial for a patient name: its first rune,
// upper-cased.
func Initial(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return strings.ToUpper(string(r))
}
