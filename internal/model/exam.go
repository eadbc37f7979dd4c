package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the states of a mock exam ("simulado").
type ExamStatus string

const (
	ExamStatusInProgress ExamStatus = "in_progress"
	ExamStatusFinished   ExamStatus = "finished"
)

// Exam is a persisted simulado: a frozen, ordered sample of question ids plus
// progress state. The pool is decided once at assembly and never re-shuffled.
type Exam struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	QuestionIDs  []uuid.UUID `json:"question_ids"`
	Cursor       int         `json:"cursor"`
	CorrectCount int         `json:"correct_count"`
	Status       ExamStatus  `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ExamAnswer is one recorded sub-answer within an exam. Append-only.
type ExamAnswer struct {
	ID         int64     `json:"id"`
	ExamID     uuid.UUID `json:"exam_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Correct    bool      `json:"correct"`
	Submitted  string    `json:"submitted"`
	AnsweredAt time.Time `json:"answered_at"`
}

// CreateExamRequest assembles an exam directly from chosen questionnaires.
type CreateExamRequest struct {
	Name             string      `json:"name" binding:"required,min=1,max=255"`
	QuestionnaireIDs []uuid.UUID `json:"questionnaire_ids" binding:"required,min=1"`
	Count            int         `json:"count" binding:"required,min=1"`
}

// SubjectCountRequest is one subject's share in a balanced exam.
type SubjectCountRequest struct {
	Subject string `json:"subject" binding:"required,min=1,max=255"`
	Count   int    `json:"count" binding:"required,min=1"`
}

// CreateBalancedExamRequest assembles an exam balanced across subjects, and
// within each subject across its member questionnaires.
type CreateBalancedExamRequest struct {
	Name     string                `json:"name" binding:"required,min=1,max=255"`
	Subjects []SubjectCountRequest `json:"subjects" binding:"required,min=1,dive"`
}

// SubmitAnswerRequest carries a raw submitted answer value: a truthy/falsy
// token for VF questions, a letter for MC questions.
type SubmitAnswerRequest struct {
	Value string `json:"value" binding:"required,max=500"`
}
