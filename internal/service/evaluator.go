package service

import (
	"errors"
	"strings"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// Domain Errors
var (
	ErrUnresolvableAnswerKey = errors.New("answer key does not match any option")
	ErrInsufficientOptions   = errors.New("multiple-choice question requires at least 2 options")
	ErrTooManyOptions        = errors.New("multiple-choice question allows at most 5 options")
)

// truthyTokens is the tolerant set of values read as "true" when normalizing
// VF answer keys and submissions. Anything else is false.
var truthyTokens = map[string]struct{}{
	"v": {}, "true": {}, "t": {}, "1": {}, "sim": {}, "s": {}, "verdadeiro": {},
}

// NormalizeBool maps a raw boolean-ish token to a bool, case-insensitively.
func NormalizeBool(raw string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ResolveLetter canonicalizes a raw MC answer key to an option letter.
// A direct letter within range wins; otherwise the raw value is matched
// case-insensitively against the exact option texts. No fuzzy matching:
// resolution failure is a validation error.
func ResolveLetter(options []string, raw string) (string, error) {
	if len(options) < model.MinOptions {
		return "", ErrInsufficientOptions
	}
	if len(options) > model.MaxOptions {
		return "", ErrTooManyOptions
	}

	key := strings.TrimSpace(raw)
	if len(key) == 1 {
		letter := strings.ToUpper(key)
		if idx := strings.Index(model.OptionLetters, letter); idx >= 0 && idx < len(options) {
			return letter, nil
		}
	}

	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), key) {
			return string(model.OptionLetters[i]), nil
		}
	}
	return "", ErrUnresolvableAnswerKey
}

// ResolveAnswerKey canonicalizes a raw answer key for persistence:
// "V"/"F" for true/false questions, an option letter for multiple choice.
func ResolveAnswerKey(kind model.QuestionKind, raw string, options []string) (string, error) {
	switch kind {
	case model.KindTrueFalse:
		if NormalizeBool(raw) {
			return "V", nil
		}
		return "F", nil
	case model.KindMultipleChoice:
		return ResolveLetter(options, raw)
	default:
		return "", ErrUnresolvableAnswerKey
	}
}

// Evaluate reports whether a submitted value answers the question correctly.
// Pure, no side effects; malformed input simply evaluates to false.
// The submitted value for MC questions must already be a letter; raw text
// resolution happens at the input boundary, never here.
func Evaluate(q *model.Question, submitted string) bool {
	switch q.Kind {
	case model.KindTrueFalse:
		return NormalizeBool(submitted) == (q.AnswerKey == "V")
	case model.KindMultipleChoice:
		return strings.ToUpper(strings.TrimSpace(submitted)) == q.AnswerKey
	default:
		return false
	}
}
