// Package session manages the note/session history: live capture with an
// active-session resume pointer, completion with duration and section
// derivation, and soft-orphan handling for deleted patients.
package session

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/therascribe/therascribe/internal/model"
	"github.com/therascribe/therascribe/internal/platform/feed"
	"github.com/therascribe/therascribe/internal/platform/store"
	"github.com/therascribe/therascribe/internal/platform/templating"
)

// templatePrefix marks a session type that references a stored template
// rather than a builtin note kind.
const templatePrefix = "template_"

// missingTemplateNotes is the note body used when a session references a
// template that no longer resolves. The session still starts; the clinician
// sees why the body is empty.
const missingTemplateNotes = "Template content could not be loaded."

// ChartStore is the slice of the store this service needs.
type ChartStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
	SaveActivePointer(ctx context.Context, p *model.ActivePointer) error
	LoadActivePointer(ctx context.Context) (*model.ActivePointer, error)
	ClearActivePointer(ctx context.Context) error
}

// PatientSource resolves patients for note rendering and enrichment.
// Implemented by the patient service.
type PatientSource interface {
	Get(id string) *model.Patient
}

// TemplateSource resolves stored templates, including the lenient id
// reconciliation. Implemented by the template service.
type TemplateSource interface {
	Get(id string) *model.Template
}

type Service struct {
	store     ChartStore
	logger    zerolog.Logger
	feed      feed.Feed
	patients  PatientSource
	templates TemplateSource
	now       func() time.Time

	// mu guards sessions; handlers run one goroutine per request.
	mu       sync.RWMutex
	sessions []model.Session
}

// NewService loads the session history into the cache.
func NewService(ctx context.Context, st ChartStore, logger zerolog.Logger) (*Service, error) {
	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return &Service{
		store:    st,
		logger:   logger,
		sessions: doc.Sessions,
		now:      time.Now,
	}, nil
}

// SetPatientSource attaches the patient resolver.
func (s *Service) SetPatientSource(p PatientSource) {
	s.patients = p
}

// SetTemplateSource attaches the template resolver.
func (s *Service) SetTemplateSource(t TemplateSource) {
	s.templates = t
}

// List returns a copy of the cached session history.
func (s *Service) List() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Get returns a copy of the session, or nil if the id is unknown.
func (s *Service) Get(id string) *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		sess := s.sessions[idx]
		return &sess
	}
	return nil
}

// Add persists a new session. Missing lifecycle fields get defaults: status
// scheduled, start timestamp now, display date/time stamped from the start
// timestamp.
func (s *Service) Add(ctx context.Context, sess model.Session) (*model.Session, error) {
	now := s.now()
	sess.ID = store.NewID()
	if sess.Status == "" {
		sess.Status = model.SessionScheduled
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = now
	}
	if sess.Date == "" {
		sess.Date = sess.StartedAt.Format("Jan 2, 2006")
	}
	if sess.StartTime == "" {
		sess.StartTime = sess.StartedAt.Format("3:04 PM")
	}

	s.mu.Lock()
	next := append(s.listLocked(), sess)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions = next
	s.mu.Unlock()

	s.feed.Notify()
	return &sess, nil
}

// Update shallow-merges the set fields of partial into the stored session.
// Returns nil, nil when the id is unknown.
func (s *Service) Update(ctx context.Context, id string, partial Partial) (*model.Session, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, nil
	}

	next := s.listLocked()
	merged := partial.apply(next[idx])
	next[idx] = merged

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions = next
	s.mu.Unlock()

	s.feed.Notify()
	return &merged, nil
}

// Delete removes the session.
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
	s.sessions = next
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

// StartLive creates an in-progress session whose note body is pre-rendered
// from the builtin skeleton or the referenced template, and records the
// active-session pointer so an interrupted capture can resume after a
// restart. Returns nil, nil when the patient is unknown.
func (s *Service) StartLive(ctx context.Context, req StartRequest) (*model.Session, error) {
	var patient *model.Patient
	if s.patients != nil {
		patient = s.patients.Get(req.PatientID)
		if patient == nil {
			return nil, nil
		}
	}

	now := s.now()
	sess := model.Session{
		ID:          store.NewID(),
		PatientID:   req.PatientID,
		SessionType: req.SessionType,
		Status:      model.SessionInProgress,
		Title:       req.Title,
		Location:    req.Location,
		StartedAt:   now,
		Date:        now.Format("Jan 2, 2006"),
		StartTime:   now.Format("3:04 PM"),
		Notes:       s.startingNotes(req.SessionType, patient, now),
	}
	if strings.HasPrefix(req.SessionType, templatePrefix) {
		sess.TemplateID = strings.TrimPrefix(req.SessionType, templatePrefix)
	}

	s.mu.Lock()
	next := append(s.listLocked(), sess)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions = next
	s.mu.Unlock()

	s.feed.Notify()

	pointer := &model.ActivePointer{
		PatientID:   sess.PatientID,
		SessionType: sess.SessionType,
		SessionID:   sess.ID,
	}
	if err := s.store.SaveActivePointer(ctx, pointer); err != nil {
		// The session itself is saved; losing the pointer only costs the
		// resume shortcut.
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("failed to save active session pointer")
	}
	return &sess, nil
}

// startingNotes builds the initial note body for a session type: the fixed
// skeleton for builtin kinds, a rendered format for template references,
// empty for anything else.
func (s *Service) startingNotes(sessionType string, patient *model.Patient, now time.Time) string {
	if skeleton := templating.BuiltinSkeleton(sessionType); skeleton != "" {
		return skeleton
	}
	if strings.HasPrefix(sessionType, templatePrefix) {
		if s.templates != nil {
			if tpl := s.templates.Get(sessionType); tpl != nil {
				return templating.Render(tpl.Format, patient, now)
			}
		}
		return missingTemplateNotes
	}
	return ""
}

// EndLive finalizes an in-progress session: stores the finished note body,
// stamps the end time, computes the duration as wall-clock minutes rounded
// to nearest, derives the section map when the body still splits along its
// skeleton, and clears a matching active pointer. Returns nil, nil when the
// id is unknown.
func (s *Service) EndLive(ctx context.Context, id, notes string) (*model.Session, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil, nil
	}

	now := s.now()
	next := s.listLocked()
	sess := next[idx]
	sess.Notes = notes
	sess.Status = model.SessionCompleted
	sess.EndedAt = &now
	sess.EndTime = now.Format("3:04 PM")
	sess.DurationMinutes = int(math.Round(now.Sub(sess.StartedAt).Minutes()))
	if sections, ok := templating.SplitSections(notes, sess.SessionType); ok {
		sess.Sections = templating.SectionMap(sections)
	}
	next[idx] = sess

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sessions = next
	s.mu.Unlock()

	s.feed.Notify()

	s.clearPointerFor(ctx, id)
	return &sess, nil
}

func (s *Service) clearPointerFor(ctx context.Context, sessionID string) {
	pointer, err := s.store.LoadActivePointer(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load active session pointer")
		return
	}
	if pointer == nil || pointer.SessionID != sessionID {
		return
	}
	if err := s.store.ClearActivePointer(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to clear active session pointer")
	}
}

// ActivePointer returns the persisted resume record, or nil when no capture
// is in flight.
func (s *Service) ActivePointer(ctx context.Context) (*model.ActivePointer, error) {
	return s.store.LoadActivePointer(ctx)
}

// SaveActivePointer records the resume pointer directly.
func (s *Service) SaveActivePointer(ctx context.Context, p *model.ActivePointer) error {
	return s.store.SaveActivePointer(ctx, p)
}

// ClearActivePointer drops the resume record.
func (s *Service) ClearActivePointer(ctx context.Context) error {
	return s.store.ClearActivePointer(ctx)
}

// MarkPatientDeleted flags every session of a deleted patient so list views
// can skip the orphans without a per-session existence probe. The sessions
// themselves are kept.
func (s *Service) MarkPatientDeleted(ctx context.Context, patientID string) error {
	s.mu.Lock()
	next := s.listLocked()
	changed := false
	for i := range next {
		if next[i].PatientID == patientID && !next[i].PatientDeleted {
			next[i].PatientDeleted = true
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.sessions = next
	s.mu.Unlock()

	s.feed.Notify()
	return nil
}

// PatientSessions returns the patient's visible history, newest first.
// Hidden sessions are excluded; a gone patient yields an empty slice.
func (s *Service) PatientSessions(patientID string) []model.Session {
	if s.patients != nil && s.patients.Get(patientID) == nil {
		return []model.Session{}
	}
	out := make([]model.Session, 0)
	s.mu.RLock()
	for _, sess := range s.sessions {
		if sess.PatientID != patientID || sess.Status == model.SessionHidden {
			continue
		}
		out = append(out, sess)
	}
	s.mu.RUnlock()
	sortNewestFirst(out)
	return out
}

// LastSessionLabel returns the display date of the patient's most recent
// visible session, or "".
func (s *Service) LastSessionLabel(patientID string) string {
	history := s.PatientSessions(patientID)
	if len(history) == 0 {
		return ""
	}
	return history[0].Date
}

// EnrichedSessions joins the history with patient and template display
// fields, newest first. Sessions whose patient no longer exists are
// excluded from the join rather than failing it.
func (s *Service) EnrichedSessions() []Enriched {
	history := s.List()
	out := make([]Enriched, 0, len(history))
	for _, sess := range history {
		if sess.PatientDeleted {
			continue
		}
		var patient *model.Patient
		if s.patients != nil {
			patient = s.patients.Get(sess.PatientID)
			if patient == nil {
				continue
			}
		}
		e := Enriched{Session: sess}
		if patient != nil {
			e.PatientName = patient.Name
			if trimmed := strings.TrimSpace(patient.Name); trimmed != "" {
				r, _ := utf8.DecodeRuneInString(trimmed)
				e.PatientInitial = strings.ToUpper(string(r))
			}
		}
		if s.templates != nil && strings.HasPrefix(sess.SessionType, templatePrefix) {
			if tpl := s.templates.Get(sess.SessionType); tpl != nil {
				e.TemplateName = tpl.Name
			}
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func sortNewestFirst(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
}

// listLocked copies the history; callers hold mu.
func (s *Service) listLocked() []model.Session {
	out := make([]model.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

func (s *Service) indexLocked(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context, sessions []model.Session) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	doc.Sessions = sessions
	if err := s.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}
