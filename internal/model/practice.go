package model

import (
	"time"

	"github.com/google/uuid"
)

// PracticePool is the persisted, shuffled iteration state for one
// questionnaire's practice session. Persisting (pool, cursor) on every change
// keeps a crash from losing more than the in-flight answer.
type PracticePool struct {
	QuestionnaireID uuid.UUID   `json:"questionnaire_id"`
	QuestionIDs     []uuid.UUID `json:"question_ids"`
	Cursor          int         `json:"cursor"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// PoolState describes where the practice session stands. Exhausted means the
// reconciled pool has no questions left at all; a cursor parked on the last
// question is still Advancing, since users may revisit answered questions.
type PoolState string

const (
	PoolStateLoaded    PoolState = "loaded"
	PoolStateAdvancing PoolState = "advancing"
	PoolStateExhausted PoolState = "exhausted"
)

// AdvanceRequest moves the practice cursor one step in either direction.
type AdvanceRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next prev"`
}
