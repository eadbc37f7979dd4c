package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/rs/zerolog"
)

// QuestionService handles question lifecycle inside a questionnaire,
// including duplication into the reserved collections.
type QuestionService struct {
	questionnaires QuestionnaireStore
	questions      QuestionStore
	cache          QueryCache
	log            zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	questionnaires QuestionnaireStore,
	questions QuestionStore,
	cache QueryCache,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		questionnaires: questionnaires,
		questions:      questions,
		cache:          cache,
		log:            log.With().Str("component", "question_service").Logger(),
	}
}

// Create resolves the raw answer key to its canonical form and persists the
// question. Resolution failures reject the payload before any write.
func (s *QuestionService) Create(ctx context.Context, questionnaireID uuid.UUID, req *model.CreateQuestionRequest) (*model.Question, error) {
	if _, err := s.questionnaires.GetByID(ctx, questionnaireID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	kind := model.QuestionKind(req.Kind)
	key, err := ResolveAnswerKey(kind, req.AnswerKey, req.Options)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		QuestionnaireID: questionnaireID,
		Kind:            kind,
		Prompt:          req.Prompt,
		Explanation:     req.Explanation,
		AnswerKey:       key,
		Options:         req.Options,
	}
	if kind == model.KindTrueFalse {
		q.Options = nil
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.invalidateQuestionnaire(ctx, questionnaireID)
	return q, nil
}

// List retrieves a questionnaire's questions through the query cache.
func (s *QuestionService) List(ctx context.Context, questionnaireID uuid.UUID) ([]model.Question, error) {
	key := config.CacheKey.QuestionListKey(questionnaireID.String())

	var cached []model.Question
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	if _, err := s.questionnaires.GetByID(ctx, questionnaireID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	list, err := s.questions.ListByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Question{}
	}
	s.cache.SetJSON(ctx, key, list)
	return list, nil
}

// Get retrieves one question.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

// UpdateExplanation edits a question's explanation in place. The prompt,
// options and answer key stay immutable after creation.
func (s *QuestionService) UpdateExplanation(ctx context.Context, id uuid.UUID, explanation string) (*model.Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.questions.UpdateExplanation(ctx, id, explanation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update explanation: %w", err)
	}
	q.Explanation = explanation

	s.invalidateQuestionnaire(ctx, q.QuestionnaireID)
	return q, nil
}

// DuplicateToFavorites copies a question into the "Favoritos" collection.
func (s *QuestionService) DuplicateToFavorites(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.duplicate(ctx, id, model.QuestionnaireFavorites)
}

// DuplicateToMistakes copies a question into the "Caderno de Erros" collection.
func (s *QuestionService) DuplicateToMistakes(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.duplicate(ctx, id, model.QuestionnaireMistakes)
}

// duplicate copy-inserts a question into a reserved questionnaire. The copy
// gets its own id and starts with a clean answer history; the reserved
// questionnaire is created on first use if the seed is missing.
func (s *QuestionService) duplicate(ctx context.Context, id uuid.UUID, targetName string) (*model.Question, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := s.questionnaires.EnsureByName(ctx, targetName, model.SubjectUnclassified)
	if err != nil {
		return nil, fmt.Errorf("ensure %s: %w", targetName, err)
	}

	dup := &model.Question{
		QuestionnaireID: target.ID,
		Kind:            src.Kind,
		Prompt:          src.Prompt,
		Explanation:     src.Explanation,
		AnswerKey:       src.AnswerKey,
		Options:         src.Options,
	}
	if err := s.questions.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate question: %w", err)
	}

	s.invalidateQuestionnaire(ctx, target.ID)
	s.cache.Invalidate(ctx, config.CacheKey.QuestionnaireListKey())
	s.log.Info().
		Str("question_id", src.ID.String()).
		Str("target", targetName).
		Msg("Question duplicated")
	return dup, nil
}

// Delete removes a question. Its answer events cascade away with it.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}

	s.invalidateQuestionnaire(ctx, q.QuestionnaireID)
	return nil
}

func (s *QuestionService) invalidateQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) {
	s.cache.Invalidate(ctx,
		config.CacheKey.QuestionListKey(questionnaireID.String()),
		config.CacheKey.SummaryKey(questionnaireID.String()),
	)
}
