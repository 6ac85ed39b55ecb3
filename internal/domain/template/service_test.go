package template

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/therascribe/therascribe/internal/model"
)

type fakeStore struct {
	mu      sync.Mutex
	doc     model.Document
	saveErr error
	saves   int
}

func (f *fakeStore) Load(_ context.Context) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc := f.doc
	return &doc, nil
}

func (f *fakeStore) Save(_ context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.doc = *doc
	f.saves++
	return nil
}

func newTestService(t *testing.T, fs *fakeStore, seed bool) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), fs, zerolog.Nop(), seed)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func TestNewService_SeedsEmptyChart(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs, true)

	list := svc.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 starter templates, got %d", len(list))
	}
	names := map[string]bool{}
	for _, tpl := range list {
		names[tpl.Name] = true
	}
	for _, want := range []string{"Psychotherapy Note", "Intake Assessment", "SOAP Note"} {
		if !names[want] {
			t.Errorf("missing starter template %q", want)
		}
	}
	if len(fs.doc.Templates) != 3 {
		t.Errorf("expected starters persisted, got %d", len(fs.doc.Templates))
	}
}

func TestNewService_NoSeedWhenPopulated(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{{ID: "t1", Name: "Mine"}}}}
	svc := newTestService(t, fs, true)

	if len(svc.List()) != 1 {
		t.Errorf("existing templates must not be augmented, got %d", len(svc.List()))
	}
	if fs.saves != 0 {
		t.Errorf("expected no write for a populated chart, got %d", fs.saves)
	}
}

func TestNewService_SeedSurvivesFailedPersist(t *testing.T) {
	fs := &fakeStore{saveErr: errors.New("disk full")}
	svc := newTestService(t, fs, true)

	if len(svc.List()) != 3 {
		t.Errorf("starters must serve from memory when the write fails, got %d", len(svc.List()))
	}
}

func TestGet_LenientIDResolution(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{
		{ID: "template_default_1", Name: "Psychotherapy Note"},
		{ID: "abc123", Name: "Custom"},
	}}}
	svc := newTestService(t, fs, false)

	cases := []struct {
		id   string
		want string
	}{
		{"template_default_1", "Psychotherapy Note"}, // exact
		{"default_1", "Psychotherapy Note"},          // prefix added
		{"abc123", "Custom"},                         // exact
		{"template_abc123", "Custom"},                // prefix stripped
	}
	for _, tc := range cases {
		got := svc.Get(tc.id)
		if got == nil || got.Name != tc.want {
			t.Errorf("Get(%q) = %v, want %s", tc.id, got, tc.want)
		}
	}
	if svc.Get("nope") != nil {
		t.Error("expected nil for unresolvable id")
	}
}

func TestAdd_DerivesSchemaFromFormat(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs, false)

	created, err := svc.Add(context.Background(), model.Template{
		Name:   "Progress Note",
		Format: "DATE: [DATE]\nPRESENTING ISSUES:\n[PRESENTING ISSUES]\nCLIENT: [NAME]",
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if !created.IsStructured {
		t.Error("expected derived template marked structured")
	}
	fields := created.Structure.Fields
	if len(fields) != 3 {
		t.Fatalf("expected 3 derived fields, got %d", len(fields))
	}
	if fields[0].Type != model.FieldDate || fields[1].Type != model.FieldTextarea || fields[2].Type != model.FieldText {
		t.Errorf("unexpected field types: %+v", fields)
	}
}

func TestAdd_KeepsSuppliedSchema(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, false)

	supplied := model.TemplateStructure{Fields: []model.Field{{Label: "ONLY", Placeholder: "[X]", Type: model.FieldText}}}
	created, err := svc.Add(context.Background(), model.Template{Name: "N", Format: "A: [A]\nB: [B]", Structure: supplied})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if len(created.Structure.Fields) != 1 || created.Structure.Fields[0].Label != "ONLY" {
		t.Errorf("supplied schema must win over derivation, got %+v", created.Structure)
	}
}

func TestUpdate_FormatChangeRederivesSchema(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{{
		ID:     "t1",
		Name:   "N",
		Format: "A: [A]",
		Structure: model.TemplateStructure{Fields: []model.Field{
			{Label: "A", Placeholder: "[A]", Type: model.FieldText},
		}},
	}}}}
	svc := newTestService(t, fs, false)

	format := "DATE: [DATE]\nPLAN: [PLAN]"
	updated, err := svc.Update(context.Background(), "t1", Partial{Format: &format})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	fields := updated.Structure.Fields
	if len(fields) != 2 || fields[0].Label != "DATE" || fields[1].Label != "PLAN" {
		t.Errorf("expected schema re-derived from new format, got %+v", fields)
	}
}

func TestGet_EmptySchemaNormalizedToContentField(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{{ID: "t1", Name: "Blank"}}}}
	svc := newTestService(t, fs, false)

	got := svc.Get("t1")
	if got == nil {
		t.Fatal("expected template")
	}
	fields := got.Structure.Fields
	if len(fields) != 1 || fields[0].Label != "Content" || fields[0].Type != model.FieldTextarea {
		t.Errorf("expected single Content textarea fallback, got %+v", fields)
	}
	if len(fs.doc.Templates[0].Structure.Fields) != 0 {
		t.Error("read-time fallback must not be persisted")
	}
}

func TestDelete(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{{ID: "template_t1", Name: "N"}}}}
	svc := newTestService(t, fs, false)

	ok, err := svc.Delete(context.Background(), "t1")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	if len(svc.List()) != 0 {
		t.Error("expected template removed")
	}

	ok, err = svc.Delete(context.Background(), "t1")
	if err != nil || ok {
		t.Errorf("expected false for unknown id, got %v, %v", ok, err)
	}
}

func TestSubscribe_ImmediateFire(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, false)

	calls := 0
	unsub := svc.Subscribe(func() { calls++ })
	defer unsub()
	if calls != 1 {
		t.Fatalf("expected immediate callback, got %d", calls)
	}

	if _, err := svc.Add(context.Background(), model.Template{Name: "N"}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected callback on mutation, got %d", calls)
	}
}

func TestMutation_RollsBackOnSaveFailure(t *testing.T) {
	fs := &fakeStore{doc: model.Document{Templates: []model.Template{{ID: "t1", Name: "N"}}}}
	svc := newTestService(t, fs, false)

	fs.saveErr = errors.New("disk full")
	if _, err := svc.Add(context.Background(), model.Template{Name: "M"}); err == nil {
		t.Fatal("expected error from failed save")
	}
	if len(svc.List()) != 1 {
		t.Errorf("cache must stay at pre-mutation state, got %d", len(svc.List()))
	}
}

func TestAdd_ConcurrentWritersLoseNothing(t *testing.T) {
	fs := &fakeStore{}
	svc := newTestService(t, fs, false)

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := fmt.Sprintf("template-%d-%d", w, i)
				if _, err := svc.Add(context.Background(), model.Template{Name: name, Format: "PLAN: [PLAN]"}); err != nil {
					t.Errorf("Add %s error: %v", name, err)
				}
			}
		}(w)
	}
	wg.Wait()

	want := workers * perWorker
	if got := len(svc.List()); got != want {
		t.Errorf("expected %d templates in cache, got %d", want, got)
	}
	if got := len(fs.doc.Templates); got != want {
		t.Errorf("expected %d templates persisted, got %d", want, got)
	}
}
