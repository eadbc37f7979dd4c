package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionKind is the closed set of supported question types.
type QuestionKind string

const (
	KindTrueFalse      QuestionKind = "VF"
	KindMultipleChoice QuestionKind = "MC"
)

// OptionLetters assigns positional letters to multiple-choice options.
// Options are capped at five, so the alphabet never runs out.
const OptionLetters = "ABCDE"

const (
	MinOptions = 2
	MaxOptions = 5
)

// Question represents one assessable item.
//
// AnswerKey is always canonical before persistence: "V"/"F" for VF questions,
// a single letter from OptionLetters for MC questions. The letter-or-text
// ambiguity of raw input is resolved at the creation boundary, never stored.
type Question struct {
	ID              uuid.UUID    `json:"id"`
	QuestionnaireID uuid.UUID    `json:"questionnaire_id"`
	Kind            QuestionKind `json:"kind"`
	Prompt          string       `json:"prompt"`
	Explanation     string       `json:"explanation,omitempty"`
	AnswerKey       string       `json:"answer_key"`
	Options         []string     `json:"options,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// CreateQuestionRequest is the payload for adding a question to a questionnaire.
// AnswerKey accepts the raw form: a truthy/falsy token for VF, a letter or the
// exact option text for MC; the service resolves it before persisting.
type CreateQuestionRequest struct {
	Kind        string   `json:"kind" binding:"required,oneof=VF MC"`
	Prompt      string   `json:"prompt" binding:"required,min=1,max=4000"`
	Explanation string   `json:"explanation" binding:"omitempty,max=8000"`
	AnswerKey   string   `json:"answer_key" binding:"required,max=500"`
	Options     []string `json:"options" binding:"omitempty,max=5,dive,max=1000"`
}

// UpdateExplanationRequest is the payload for editing a question's explanation
// in place. Explanation is the only mutable question attribute.
type UpdateExplanationRequest struct {
	Explanation string `json:"explanation" binding:"max=8000"`
}
