package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// PracticePoolRepository persists per-questionnaire practice iteration state.
// One row per questionnaire; the (pool, cursor) pair is written as a unit so a
// crash can never leave them half-updated.
type PracticePoolRepository struct {
	pool *pgxpool.Pool
}

// NewPracticePoolRepository creates a new PracticePoolRepository.
func NewPracticePoolRepository(pool *pgxpool.Pool) *PracticePoolRepository {
	return &PracticePoolRepository{pool: pool}
}

// Get retrieves the persisted pool for a questionnaire.
// Returns pgx.ErrNoRows if no session was ever started.
func (r *PracticePoolRepository) Get(ctx context.Context, questionnaireID uuid.UUID) (*model.PracticePool, error) {
	p := &model.PracticePool{}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT questionnaire_id, question_ids, cursor, updated_at
		 FROM practice_pools WHERE questionnaire_id = $1`, questionnaireID,
	).Scan(&p.QuestionnaireID, &raw, &p.Cursor, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.QuestionIDs); err != nil {
		return nil, fmt.Errorf("decode pool: %w", err)
	}
	return p, nil
}

// Save upserts the (pool, cursor) pair in one write.
func (r *PracticePoolRepository) Save(ctx context.Context, p *model.PracticePool) error {
	raw, err := json.Marshal(p.QuestionIDs)
	if err != nil {
		return fmt.Errorf("encode pool: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO practice_pools (questionnaire_id, question_ids, cursor)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (questionnaire_id) DO UPDATE
		 SET question_ids = EXCLUDED.question_ids,
		     cursor = EXCLUDED.cursor,
		     updated_at = NOW()
		 RETURNING updated_at`,
		p.QuestionnaireID, raw, p.Cursor,
	).Scan(&p.UpdatedAt)
}

// Delete discards the persisted session state for a questionnaire.
func (r *PracticePoolRepository) Delete(ctx context.Context, questionnaireID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM practice_pools WHERE questionnaire_id = $1`, questionnaireID)
	return err
}
