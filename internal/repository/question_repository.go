package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new question. AnswerKey must already be canonical.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (questionnaire_id, kind, prompt, explanation, answer_key, options)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		q.QuestionnaireID, q.Kind, q.Prompt, q.Explanation, q.AnswerKey, q.Options,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID retrieves a question by id. Returns pgx.ErrNoRows if absent.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, questionnaire_id, kind, prompt, explanation, answer_key, options, created_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.QuestionnaireID, &q.Kind, &q.Prompt, &q.Explanation, &q.AnswerKey, &q.Options, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByQuestionnaire retrieves all questions for a questionnaire in creation order.
func (r *QuestionRepository) ListByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, questionnaire_id, kind, prompt, explanation, answer_key, options, created_at
		 FROM questions WHERE questionnaire_id = $1
		 ORDER BY created_at, id`, questionnaireID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuestionnaireID, &q.Kind, &q.Prompt, &q.Explanation, &q.AnswerKey, &q.Options, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListIDsByQuestionnaire retrieves only question ids, for pool building and
// resume reconciliation.
func (r *QuestionRepository) ListIDsByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions WHERE questionnaire_id = $1 ORDER BY created_at, id`,
		questionnaireID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// CountByQuestionnaire returns the live question count for a questionnaire.
func (r *QuestionRepository) CountByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE questionnaire_id = $1`, questionnaireID,
	).Scan(&n)
	return n, err
}

// CountsByQuestionnaires returns per-questionnaire availability for the given set.
// Questionnaires with zero questions are simply absent from the map.
func (r *QuestionRepository) CountsByQuestionnaires(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT questionnaire_id, COUNT(*)
		 FROM questions WHERE questionnaire_id = ANY($1::uuid[])
		 GROUP BY questionnaire_id`, uuidStrings(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// SampleByQuestionnaires draws up to n question ids uniformly at random,
// without replacement, from the union of the given questionnaires.
func (r *QuestionRepository) SampleByQuestionnaires(ctx context.Context, ids []uuid.UUID, n int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions
		 WHERE questionnaire_id = ANY($1::uuid[])
		 ORDER BY random() LIMIT $2`, uuidStrings(ids), n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// SampleByQuestionnaire draws up to n question ids from one questionnaire.
func (r *QuestionRepository) SampleByQuestionnaire(ctx context.Context, id uuid.UUID, n int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM questions
		 WHERE questionnaire_id = $1
		 ORDER BY random() LIMIT $2`, id, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// UpdateExplanation edits a question's explanation in place; explanation is
// the only mutable question attribute.
func (r *QuestionRepository) UpdateExplanation(ctx context.Context, id uuid.UUID, explanation string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET explanation = $1 WHERE id = $2`, explanation, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a single question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// uuidStrings renders ids for the uuid[] casts in ANY() filters.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
