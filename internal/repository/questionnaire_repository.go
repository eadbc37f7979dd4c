package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// QuestionnaireRepository handles questionnaire data access.
type QuestionnaireRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionnaireRepository creates a new QuestionnaireRepository.
func NewQuestionnaireRepository(pool *pgxpool.Pool) *QuestionnaireRepository {
	return &QuestionnaireRepository{pool: pool}
}

// Create inserts a new questionnaire. The unique constraint on name surfaces
// as a pgconn error the service layer maps to a conflict.
func (r *QuestionnaireRepository) Create(ctx context.Context, q *model.Questionnaire) error {
	if q.Subject == "" {
		q.Subject = model.SubjectUnclassified
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questionnaires (name, description, subject)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		q.Name, q.Description, q.Subject,
	).Scan(&q.ID, &q.CreatedAt)
}

// EnsureByName returns the questionnaire with the given name, creating it if
// absent. Idempotent under concurrent callers via upsert.
func (r *QuestionnaireRepository) EnsureByName(ctx context.Context, name, subject string) (*model.Questionnaire, error) {
	if subject == "" {
		subject = model.SubjectUnclassified
	}
	q := &model.Questionnaire{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questionnaires (name, description, subject)
		 VALUES ($1, '', $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, description, subject, created_at`,
		name, subject,
	).Scan(&q.ID, &q.Name, &q.Description, &q.Subject, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a questionnaire by id. Returns pgx.ErrNoRows if absent.
func (r *QuestionnaireRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Questionnaire, error) {
	q := &model.Questionnaire{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, subject, created_at
		 FROM questionnaires WHERE id = $1`, id,
	).Scan(&q.ID, &q.Name, &q.Description, &q.Subject, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByName retrieves a questionnaire by exact name.
func (r *QuestionnaireRepository) GetByName(ctx context.Context, name string) (*model.Questionnaire, error) {
	q := &model.Questionnaire{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, subject, created_at
		 FROM questionnaires WHERE name = $1`, name,
	).Scan(&q.ID, &q.Name, &q.Description, &q.Subject, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// List retrieves all questionnaires ordered by name.
func (r *QuestionnaireRepository) List(ctx context.Context) ([]model.Questionnaire, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, subject, created_at
		 FROM questionnaires ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestionnaires(rows)
}

// ListBySubject retrieves the questionnaires carrying a subject label,
// ordered by name so balanced allocation walks members deterministically.
func (r *QuestionnaireRepository) ListBySubject(ctx context.Context, subject string) ([]model.Questionnaire, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, subject, created_at
		 FROM questionnaires
		 WHERE subject = $1 AND name NOT IN ($2, $3)
		 ORDER BY name ASC`,
		subject, model.QuestionnaireFavorites, model.QuestionnaireMistakes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestionnaires(rows)
}

// Delete removes a questionnaire; owned questions, answer events and the
// practice pool go with it via FK cascade.
func (r *QuestionnaireRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	return err
}

func scanQuestionnaires(rows pgx.Rows) ([]model.Questionnaire, error) {
	var list []model.Questionnaire
	for rows.Next() {
		var q model.Questionnaire
		if err := rows.Scan(&q.ID, &q.Name, &q.Description, &q.Subject, &q.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}
