package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrNameTaken     = errors.New("questionnaire name already in use")
	ErrReservedGroup = errors.New("reserved questionnaires cannot be deleted")
)

// QuestionnaireService handles questionnaire lifecycle and the performance
// summary, with read-through caching on the list query.
type QuestionnaireService struct {
	questionnaires QuestionnaireStore
	questions      QuestionStore
	events         AnswerEventStore
	pools          PracticePoolStore
	cache          QueryCache
	log            zerolog.Logger
}

// NewQuestionnaireService creates a new QuestionnaireService.
func NewQuestionnaireService(
	questionnaires QuestionnaireStore,
	questions QuestionStore,
	events AnswerEventStore,
	pools PracticePoolStore,
	cache QueryCache,
	log zerolog.Logger,
) *QuestionnaireService {
	return &QuestionnaireService{
		questionnaires: questionnaires,
		questions:      questions,
		events:         events,
		pools:          pools,
		cache:          cache,
		log:            log.With().Str("component", "questionnaire_service").Logger(),
	}
}

// List retrieves all questionnaires, name-ordered, through the query cache.
func (s *QuestionnaireService) List(ctx context.Context) ([]model.Questionnaire, error) {
	key := config.CacheKey.QuestionnaireListKey()

	var cached []model.Questionnaire
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	list, err := s.questionnaires.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Questionnaire{}
	}
	s.cache.SetJSON(ctx, key, list)
	return list, nil
}

// Create inserts a new questionnaire and invalidates the list cache.
func (s *QuestionnaireService) Create(ctx context.Context, req *model.CreateQuestionnaireRequest) (*model.Questionnaire, error) {
	q := &model.Questionnaire{
		Name:        req.Name,
		Description: req.Description,
		Subject:     req.Subject,
	}
	if err := s.questionnaires.Create(ctx, q); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create questionnaire: %w", err)
	}

	s.cache.Invalidate(ctx, config.CacheKey.QuestionnaireListKey())
	s.log.Info().Str("questionnaire_id", q.ID.String()).Str("name", q.Name).Msg("Questionnaire created")
	return q, nil
}

// Get retrieves one questionnaire.
func (s *QuestionnaireService) Get(ctx context.Context, id uuid.UUID) (*model.Questionnaire, error) {
	q, err := s.questionnaires.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

// Delete removes a questionnaire, cascading to its questions, answer events
// and practice pool. Reserved questionnaires refuse deletion.
func (s *QuestionnaireService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.Reserved() {
		return ErrReservedGroup
	}
	if err := s.questionnaires.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete questionnaire: %w", err)
	}

	s.cache.Invalidate(ctx,
		config.CacheKey.QuestionnaireListKey(),
		config.CacheKey.QuestionListKey(id.String()),
		config.CacheKey.SummaryKey(id.String()),
	)
	s.log.Info().Str("questionnaire_id", id.String()).Str("name", q.Name).Msg("Questionnaire deleted")
	return nil
}

// Summarize derives the performance block for a questionnaire: live question
// count, distinct answered count, and correct count taken from each
// question's chronologically latest answer event only.
func (s *QuestionnaireService) Summarize(ctx context.Context, id uuid.UUID) (*model.PerformanceSummary, error) {
	key := config.CacheKey.SummaryKey(id.String())

	var cached model.PerformanceSummary
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	total, err := s.questions.CountByQuestionnaire(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	responded, correct, err := s.events.LatestPerQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reduce answer events: %w", err)
	}

	summary := &model.PerformanceSummary{
		Total:     total,
		Responded: responded,
		Correct:   correct,
	}
	if total > 0 {
		summary.Percentage = 100 * float64(correct) / float64(total)
	}

	s.cache.SetJSON(ctx, key, summary)
	return summary, nil
}

// ResetResolutions purges the questionnaire's answer history and discards the
// persisted practice pool, returning the session to its initial state.
func (s *QuestionnaireService) ResetResolutions(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.events.DeleteByQuestionnaire(ctx, id); err != nil {
		return fmt.Errorf("purge answer events: %w", err)
	}
	if err := s.pools.Delete(ctx, id); err != nil {
		return fmt.Errorf("discard practice pool: %w", err)
	}

	s.cache.Invalidate(ctx, config.CacheKey.SummaryKey(id.String()))
	s.log.Info().Str("questionnaire_id", id.String()).Msg("Resolutions reset")
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
