package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// ExamRepository handles simulado data access. The question id pool is frozen
// at creation: only cursor, correct_count and status ever change afterwards.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts a new exam with its frozen question pool.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	raw, err := json.Marshal(e.QuestionIDs)
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (name, question_ids, cursor, correct_count, status)
		 VALUES ($1, $2, 0, 0, $3)
		 RETURNING id, created_at, updated_at`,
		e.Name, raw, model.ExamStatusInProgress,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID retrieves an exam by id. Returns pgx.ErrNoRows if absent.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, question_ids, cursor, correct_count, status, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &raw, &e.Cursor, &e.CorrectCount, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &e.QuestionIDs); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}
	return e, nil
}

// List retrieves all exams, newest first.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, question_ids, cursor, correct_count, status, created_at, updated_at
		 FROM exams ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		var raw []byte
		if err := rows.Scan(&e.ID, &e.Name, &raw, &e.Cursor, &e.CorrectCount, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.QuestionIDs); err != nil {
			return nil, fmt.Errorf("decode pool: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// UpdateProgress persists the mutable slice of exam state in one write.
func (r *ExamRepository) UpdateProgress(ctx context.Context, id uuid.UUID, cursor, correctCount int, status model.ExamStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET cursor = $1, correct_count = $2, status = $3, updated_at = NOW()
		 WHERE id = $4`,
		cursor, correctCount, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an exam and its recorded answers.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddAnswer appends one recorded sub-answer to an exam.
func (r *ExamRepository) AddAnswer(ctx context.Context, a *model.ExamAnswer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_answers (exam_id, question_id, correct, submitted)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, answered_at`,
		a.ExamID, a.QuestionID, a.Correct, a.Submitted,
	).Scan(&a.ID, &a.AnsweredAt)
}

// ListAnswers retrieves an exam's recorded answers in submission order.
func (r *ExamRepository) ListAnswers(ctx context.Context, examID uuid.UUID) ([]model.ExamAnswer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_id, correct, submitted, answered_at
		 FROM exam_answers WHERE exam_id = $1 ORDER BY id`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.ExamAnswer
	for rows.Next() {
		var a model.ExamAnswer
		if err := rows.Scan(&a.ID, &a.ExamID, &a.QuestionID, &a.Correct, &a.Submitted, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
