package model

import (
	"time"

	"github.com/google/uuid"
)

// Reserved questionnaire names. Both are system-managed: created by migration,
// excluded from exam assembly and from deletion, used as duplication targets.
const (
	QuestionnaireFavorites = "Favoritos"
	QuestionnaireMistakes  = "Caderno de Erros"
)

// SubjectUnclassified is the sentinel grouping label for questionnaires
// created without an explicit subject.
const SubjectUnclassified = "Sem Matéria"

// Questionnaire represents a named collection of questions.
type Questionnaire struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reserved reports whether this questionnaire is one of the system-managed sets.
func (q *Questionnaire) Reserved() bool {
	return q.Name == QuestionnaireFavorites || q.Name == QuestionnaireMistakes
}

// CreateQuestionnaireRequest is the payload for creating a questionnaire.
type CreateQuestionnaireRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Subject     string `json:"subject" binding:"omitempty,max=255"`
}
