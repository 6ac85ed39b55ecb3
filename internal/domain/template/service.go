// Package template manages clinician-authored note formats: starter
// seeding, lenient id resolution, and schema derivation from the format
// text.
package template

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/feed"
	"github.com/therascribe/therascribe/internal/platform/store"
	"github.com/therascribe/therascribe/internal/platform/templating"
)

const idPrefix = "template_"

// ChartStore is the slice of the store this service needs.
type ChartStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

type Service struct {
	store  ChartStore
	logger zerolog.Logger
	feed   feed.Feed
	now    func() time.Time

	// mu guards templates; handlers run one goroutine per request.
	mu        sync.RWMutex
	templates []model.Template
}

// NewService loads the stored templates into the cache. When seed is true
// and the chart holds no templates, the starter set is installed; if that
// write fails the starters still serve from memory so the picker is never
// empty.
func NewService(ctx context.Context, st ChartStore, logger zerolog.Logger, seed bool) (*Service, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s := &Service{
		store:     st,
		logger:    logger,
		templates: doc.Templates,
		now:       time.Now,
	}
	if seed && len(s.templates) == 0 {
		seeds := seedTemplates()
		doc.Templates = seeds
		if err := st.Save(ctx, doc); err != nil {
			logger.Error().Err(err).Msg("failed to persist starter templates, serving from memory")
		}
		s.templates = seeds
	}
	return s, nil
}

// List returns a copy of the cached templates with normalized schemas.
func (s *Service) List() []model.Template {
	s.mu.RLock()
	out := s.snapshotLocked()
	s.mu.RUnlock()
	for i := range out {
		out[i].Structure = templating.NormalizeStructure(&out[i])
	}
	return out
}

// snapshotLocked copies the cache without read-time normalization; mutations
// work on this so display fallbacks never get persisted. Callers hold mu.
func (s *Service) snapshotLocked() []model.Template {
	out := make([]model.Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Get resolves a template id leniently: exact match first, then with the
// "template_" prefix stripped, then with it added. Session types and raw
// ids circulate in both spellings, so both must resolve to the same
// template. Returns nil when no attempt matches.
func (s *Service) Get(id string) *model.Template {
	s.mu.RLock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.RUnlock()
		return nil
	}
	t := s.templates[idx]
	s.mu.RUnlock()
	t.Structure = templating.NormalizeStructure(&t)
	return &t
}

// Add persists a new template. When no schema is supplied and a format is,
// the field schema is derived from the format's placeholder lines.
func (s *Service) Add(ctx context.Context, t model.Template) (*model.Template, error) {
	t.ID = idPrefix + store.NewID()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	deriveStructure(&t)

	s.mu.Lock()
	next := append(s.snapshotLocked(), t)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.templates = next
	s.mu.Unlock()

	s.feed.Notify()
	return &t, nil
}

// Update shallow-merges the set fields of partial into the stored template.
// A format change without an explicit schema re-derives the schema. Returns
// nil, nil when the id is unknown.
func (s *Service) Update(ctx context.Context, id string, partial Partial) (*model.Template, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, nil
	}

	next := s.snapshotLocked()
	merged := partial.apply(next[idx])
	merged.UpdatedAt = s.now()
	if partial.Format != nil && partial.Structure == nil {
		merged.Structure = model.TemplateStructure{}
		deriveStructure(&merged)
	}
	next[idx] = merged

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.templates = next
	s.mu.Unlock()

	s.feed.Notify()
	return &merged, nil
}

// Delete removes the template. Sessions referencing it keep their type tag;
// starting one later falls back to the missing-template note body.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := s.snapshotLocked()
	next = append(next[:idx], next[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.templates = next
	s.mu.Unlock()

	s.feed.Notify()
	return true, nil
}

// Subscribe registers a change callback; it fires once immediately.
func (s *Service) Subscribe(fn func()) func() {
	unsub := s.feed.Subscribe(fn)
	fn()
	return unsub
}

// indexLocked applies the lenient three-attempt id resolution; callers hold
// mu.
func (s *Service) indexLocked(id string) int {
	candidates := []string{id}
	if strings.HasPrefix(id, idPrefix) {
		candidates = append(candidates, strings.TrimPrefix(id, idPrefix))
	} else {
		candidates = append(candidates, idPrefix+id)
	}
	for _, candidate := range candidates {
		for i := range s.templates {
			if s.templates[i].ID == candidate {
				return i
			}
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context, templates []model.Template) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("persist templates: %w", err)
	}
	doc.Templates = templates
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist templates: %w", err)
	}
	return nil
}

// deriveStructure fills an absent schema from the format text.
func deriveStructure(t *model.Template) {
	if len(t.Structure.Fields) > 0 || t.Format == "" {
		return
	}
	t.Structure = model.TemplateStructure{Fields: templating.ParseFormat(t.Format)}
	t.IsStructured = true
}
