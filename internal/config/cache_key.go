package config

import (
	"fmt"
)

// CacheKeyStruct centralizes every redis key shape used by the query cache so
// that mutators and readers cannot drift apart.
type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionnaireListKey returns the cache key for the full questionnaire list.
func (r *CacheKeyStruct) QuestionnaireListKey() string {
	return "questionnaires:list"
}

// QuestionListKey returns the cache key for a questionnaire's question list.
func (r *CacheKeyStruct) QuestionListKey(questionnaireID string) string {
	return fmt.Sprintf("questionnaire:%s:questions", questionnaireID)
}

// SummaryKey returns the cache key for a questionnaire's performance summary.
func (r *CacheKeyStruct) SummaryKey(questionnaireID string) string {
	return fmt.Sprintf("questionnaire:%s:summary", questionnaireID)
}

var CacheKey = NewCacheKeyStruct()
