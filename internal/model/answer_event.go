package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerEvent is one recorded submission against a question. Events are
// append-only: repeated practice accumulates history, and performance is
// always derived from the latest event per question.
type AnswerEvent struct {
	ID              int64     `json:"id"`
	QuestionnaireID uuid.UUID `json:"questionnaire_id"`
	QuestionID      uuid.UUID `json:"question_id"`
	Correct         bool      `json:"correct"`
	AnsweredAt      time.Time `json:"answered_at"`
}

// PerformanceSummary is the derived per-questionnaire score block.
// Correct counts only the chronologically latest event per question.
type PerformanceSummary struct {
	Total      int     `json:"total"`
	Responded  int     `json:"responded"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}
