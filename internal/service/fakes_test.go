package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/quizflow"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
)

const personalitySurvey = `{
  "id": "personality",
  "title": "Which drink are you?",
  "quizzes": [
    {"id": "intro", "mode": "page", "title": "Welcome"},
    {"id": "mood", "mode": "selection", "title": "Pick a mood", "maxChoices": 1, "required": true,
     "choices": [
       {"id": "calm", "label": "Calm", "tags": {"energy": ["low"]}},
       {"id": "wild", "label": "Wild", "tags": {"energy": ["high"]}, "next": "duel"}
     ]},
    {"id": "name", "mode": "fill", "title": "Your name"},
    {"id": "duel", "mode": "oneInTwo", "title": "This or that",
     "choices": [
       {"id": "tea", "label": "Tea", "tags": {"energy": ["low"]}},
       {"id": "coffee", "label": "Coffee", "tags": {"energy": ["high"]}}
     ]}
  ],
  "tags": {"energy": {"id": "energy", "label": "Energy", "values": ["low", "high"]}},
  "results": {
    "selectedTags": ["energy"],
    "defaultId": "water",
    "list": {
      "water": {"id": "water", "title": "Water", "tags": {}},
      "latte": {"id": "latte", "title": "Latte", "tags": {"energy": ["high"]}},
      "chamomile": {"id": "chamomile", "title": "Chamomile", "tags": {"energy": ["low"]}}
    }
  }
}`

func decodeSurvey(t *testing.T, raw string) *model.Survey {
	t.Helper()
	var s model.Survey
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode survey: %v", err)
	}
	return &s
}

// ─── Survey storage fakes ────────────────────────────────────────────

type fakeSurveyRepo struct {
	mu      sync.Mutex
	surveys map[string]*model.Survey
	gets    int
	err     error
}

func newFakeSurveyRepo(surveys ...*model.Survey) *fakeSurveyRepo {
	r := &fakeSurveyRepo{surveys: make(map[string]*model.Survey)}
	for _, s := range surveys {
		r.surveys[s.ID] = s
	}
	return r
}

func (r *fakeSurveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.surveys[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeSurveyRepo) Upsert(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.surveys[s.ID] = s
	return nil
}

func (r *fakeSurveyRepo) ListIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.surveys))
	for id := range r.surveys {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeSurveyCache struct {
	mu      sync.Mutex
	entries map[string]*model.Survey
	setErr  error
	deleted []string
}

func newFakeSurveyCache() *fakeSurveyCache {
	return &fakeSurveyCache{entries: make(map[string]*model.Survey)}
}

func (c *fakeSurveyCache) Get(_ context.Context, id string) (*model.Survey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return s, nil
}

func (c *fakeSurveyCache) Set(_ context.Context, s *model.Survey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[s.ID] = s
	return nil
}

func (c *fakeSurveyCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deleted = append(c.deleted, id)
	return nil
}

// ─── Session storage fakes ───────────────────────────────────────────

type fakeSessionStore struct {
	mu      sync.Mutex
	states  map[string][]byte
	locked  map[string]bool
	drafts  []model.AnswerDraft
	updates int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{states: make(map[string][]byte), locked: make(map[string]bool)}
}

func (f *fakeSessionStore) Create(_ context.Context, st *quizflow.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.states[st.ID]; ok {
		return repository.ErrConflict
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	f.states[st.ID] = raw
	return nil
}

func (f *fakeSessionStore) Load(_ context.Context, id string) (*quizflow.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked(id)
}

func (f *fakeSessionStore) loadLocked(id string) (*quizflow.State, error) {
	raw, ok := f.states[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var st quizflow.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (f *fakeSessionStore) Update(_ context.Context, id string, fn func(*quizflow.State) (*quizflow.State, error)) (*quizflow.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.loadLocked(id)
	if err != nil {
		return nil, err
	}
	next, err := fn(st)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	f.states[id] = raw
	f.updates++
	return next, nil
}

func (f *fakeSessionStore) AcquireSubmitLock(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked[id] {
		return false, nil
	}
	f.locked[id] = true
	return true, nil
}

func (f *fakeSessionStore) ReleaseSubmitLock(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locked, id)
	return nil
}

func (f *fakeSessionStore) EnqueueDraft(_ context.Context, d model.AnswerDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts = append(f.drafts, d)
	return nil
}

type fakeAnswerWriter struct {
	mu      sync.Mutex
	answers []*model.Answer
	err     error
}

func (w *fakeAnswerWriter) PutAnswer(_ context.Context, a *model.Answer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.answers = append(w.answers, a)
	return nil
}

func (w *fakeAnswerWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.answers)
}
