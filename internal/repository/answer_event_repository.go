package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// AnswerEventRepository handles the append-only answer history.
type AnswerEventRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerEventRepository creates a new AnswerEventRepository.
func NewAnswerEventRepository(pool *pgxpool.Pool) *AnswerEventRepository {
	return &AnswerEventRepository{pool: pool}
}

// Create appends one answer event. Events are never updated.
func (r *AnswerEventRepository) Create(ctx context.Context, ev *model.AnswerEvent) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answer_events (questionnaire_id, question_id, correct)
		 VALUES ($1, $2, $3)
		 RETURNING id, answered_at`,
		ev.QuestionnaireID, ev.QuestionID, ev.Correct,
	).Scan(&ev.ID, &ev.AnsweredAt)
}

// LatestPerQuestion reduces the questionnaire's event history to the
// chronologically last event per question (insertion order breaks timestamp
// ties) in a single pass, returning how many distinct questions were answered
// and how many of those latest answers are correct.
func (r *AnswerEventRepository) LatestPerQuestion(ctx context.Context, questionnaireID uuid.UUID) (responded, correct int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE correct)
		 FROM (
			 SELECT DISTINCT ON (question_id) correct
			 FROM answer_events
			 WHERE questionnaire_id = $1
			 ORDER BY question_id, answered_at DESC, id DESC
		 ) latest`, questionnaireID,
	).Scan(&responded, &correct)
	return responded, correct, err
}

// DeleteByQuestionnaire purges the questionnaire's whole answer history.
// Used by the "reset resolutions" operation.
func (r *AnswerEventRepository) DeleteByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM answer_events WHERE questionnaire_id = $1`, questionnaireID)
	return err
}
