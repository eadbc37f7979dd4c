package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// The services depend on narrow store interfaces rather than the concrete
// pgx repositories so the engine logic is exercisable against in-memory
// fakes. internal/repository satisfies all of them.

// QuestionnaireStore is the record store surface for questionnaires.
type QuestionnaireStore interface {
	Create(ctx context.Context, q *model.Questionnaire) error
	EnsureByName(ctx context.Context, name, subject string) (*model.Questionnaire, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Questionnaire, error)
	GetByName(ctx context.Context, name string) (*model.Questionnaire, error)
	List(ctx context.Context) ([]model.Questionnaire, error)
	ListBySubject(ctx context.Context, subject string) ([]model.Questionnaire, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionStore is the record store surface for questions, including the
// "sample N random records" primitive used by exam assembly.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]model.Question, error)
	ListIDsByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]uuid.UUID, error)
	CountByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (int, error)
	CountsByQuestionnaires(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
	SampleByQuestionnaires(ctx context.Context, ids []uuid.UUID, n int) ([]uuid.UUID, error)
	SampleByQuestionnaire(ctx context.Context, id uuid.UUID, n int) ([]uuid.UUID, error)
	UpdateExplanation(ctx context.Context, id uuid.UUID, explanation string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AnswerEventStore is the append-only answer history surface.
type AnswerEventStore interface {
	Create(ctx context.Context, ev *model.AnswerEvent) error
	LatestPerQuestion(ctx context.Context, questionnaireID uuid.UUID) (responded, correct int, err error)
	DeleteByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) error
}

// PracticePoolStore persists (pool, cursor) pairs.
type PracticePoolStore interface {
	Get(ctx context.Context, questionnaireID uuid.UUID) (*model.PracticePool, error)
	Save(ctx context.Context, p *model.PracticePool) error
	Delete(ctx context.Context, questionnaireID uuid.UUID) error
}

// ExamStore is the record store surface for simulados.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	List(ctx context.Context) ([]model.Exam, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, cursor, correctCount int, status model.ExamStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddAnswer(ctx context.Context, a *model.ExamAnswer) error
	ListAnswers(ctx context.Context, examID uuid.UUID) ([]model.ExamAnswer, error)
}

// QueryCache is the read-through cache surface (internal/cache satisfies it).
type QueryCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{})
	Invalidate(ctx context.Context, keys ...string)
}
