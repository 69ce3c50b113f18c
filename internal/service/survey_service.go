package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/model"
	"github.com/nevenhsu/survey-web-sub001/internal/quizflow"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
)

// Domain Errors
var (
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrInvalidSurvey   = errors.New("survey definition is invalid")
	ErrSessionNotFound = errors.New("answer session not found")
)

// SurveyRepository is the durable survey store.
type SurveyRepository interface {
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	Upsert(ctx context.Context, s *model.Survey) error
	ListIDs(ctx context.Context) ([]string, error)
}

// SurveyCache is the shared definition cache in front of the repository.
type SurveyCache interface {
	Get(ctx context.Context, id string) (*model.Survey, error)
	Set(ctx context.Context, s *model.Survey) error
	Delete(ctx context.Context, id string) error
}

type compiledSurvey struct {
	idx     *quizflow.Index
	expires time.Time
}

// SurveyService loads, validates and caches survey definitions.
//
// Reads try process memory, then Redis, then PostgreSQL. A database hit
// repopulates Redis so the next instance finds it there.
type SurveyService struct {
	repo  SurveyRepository
	cache SurveyCache
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.Mutex
	compiled map[string]compiledSurvey
}

// NewSurveyService creates a new SurveyService. ttl bounds how long a compiled
// survey is reused in process memory.
func NewSurveyService(repo SurveyRepository, cache SurveyCache, ttl time.Duration, log zerolog.Logger) *SurveyService {
	return &SurveyService{
		repo:     repo,
		cache:    cache,
		ttl:      ttl,
		log:      log.With().Str("component", "survey_service").Logger(),
		now:      time.Now,
		compiled: make(map[string]compiledSurvey),
	}
}

// Get returns the survey definition shown to respondents.
func (s *SurveyService) Get(ctx context.Context, id string) (*model.Survey, error) {
	idx, err := s.Index(ctx, id)
	if err != nil {
		return nil, err
	}
	return idx.Survey(), nil
}

// Index returns the compiled survey, loading it on first use.
func (s *SurveyService) Index(ctx context.Context, id string) (*quizflow.Index, error) {
	s.mu.Lock()
	entry, ok := s.compiled[id]
	s.mu.Unlock()
	if ok && s.now().Before(entry.expires) {
		return entry.idx, nil
	}

	survey, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	idx, err := s.compile(survey)
	if err != nil {
		return nil, err
	}
	s.remember(idx)
	return idx, nil
}

// Validate compiles a definition without storing it.
func (s *SurveyService) Validate(survey *model.Survey) (*quizflow.Index, error) {
	if survey.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidSurvey)
	}
	return s.compile(survey)
}

// Save validates and stores a definition, replacing every cached copy.
func (s *SurveyService) Save(ctx context.Context, survey *model.Survey) error {
	idx, err := s.Validate(survey)
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, survey); err != nil {
		return fmt.Errorf("upsert survey: %w", err)
	}
	if err := s.cache.Set(ctx, survey); err != nil {
		// A stale cached copy would outlive the update; drop it instead.
		s.log.Warn().Err(err).Str("survey_id", survey.ID).Msg("Cache refresh failed, evicting")
		_ = s.cache.Delete(ctx, survey.ID)
	}
	s.remember(idx)

	s.log.Info().
		Str("survey_id", survey.ID).
		Int("quizzes", idx.Len()).
		Int("results", len(survey.Results.List)).
		Msg("Survey saved")
	return nil
}

// PrewarmAll loads every stored survey into Redis and process memory before
// traffic arrives. Invalid surveys are logged and skipped.
func (s *SurveyService) PrewarmAll(ctx context.Context) error {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list surveys: %w", err)
	}
	if len(ids) == 0 {
		s.log.Info().Msg("No surveys to prewarm")
		return nil
	}

	warmed := 0
	for _, id := range ids {
		survey, err := s.repo.GetByID(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("survey_id", id).Msg("Failed to load survey, skipping")
			continue
		}
		idx, err := s.compile(survey)
		if err != nil {
			s.log.Warn().Err(err).Str("survey_id", id).Msg("Invalid survey, skipping")
			continue
		}
		if err := s.cache.Set(ctx, survey); err != nil {
			s.log.Warn().Err(err).Str("survey_id", id).Msg("Failed to cache survey")
		}
		s.remember(idx)
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(ids)).
		Msg("Prewarming complete")
	return nil
}

func (s *SurveyService) load(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.cache.Get(ctx, id)
	if err == nil {
		return survey, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("survey_id", id).Msg("Survey cache read failed, falling back to database")
	}

	survey, err = s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("get survey: %w", err)
	}

	// Self-heal the shared cache.
	if err := s.cache.Set(ctx, survey); err != nil {
		s.log.Warn().Err(err).Str("survey_id", id).Msg("Failed to repopulate survey cache")
	}
	return survey, nil
}

func (s *SurveyService) compile(survey *model.Survey) (*quizflow.Index, error) {
	idx, err := quizflow.Compile(survey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSurvey, err)
	}
	if idx.HasCycle() {
		s.log.Warn().
			Str("survey_id", survey.ID).
			Msg("Survey branches form a cycle; revisited quizzes replace their earlier answers")
	}
	return idx, nil
}

func (s *SurveyService) remember(idx *quizflow.Index) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiled[idx.Survey().ID] = compiledSurvey{idx: idx, expires: s.now().Add(s.ttl)}
}
