package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrEmptyImport    = errors.New("import file has no data rows")
	ErrMissingColumns = errors.New("import file is missing required columns")
)

// RowError describes one rejected import row. Line numbers match the source
// file, so the first data row is line 2.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportReport summarizes a CSV import: how many questions landed and which
// rows were rejected. Row failures never abort the import.
type ImportReport struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors"`
}

// headerAliases maps accepted column spellings, lowercase and accent
// variants included, to canonical column names.
var headerAliases = map[string]string{
	"tipo":          "kind",
	"type":          "kind",
	"questionario":  "questionnaire",
	"questionário":  "questionnaire",
	"questionnaire": "questionnaire",
	"texto":         "prompt",
	"pergunta":      "prompt",
	"prompt":        "prompt",
	"correta":       "answer",
	"resposta":      "answer",
	"answer":        "answer",
	"explicacao":    "explanation",
	"explicação":    "explanation",
	"explanation":   "explanation",
	"alternativas":  "options",
	"options":       "options",
	"materia":       "subject",
	"matéria":       "subject",
	"subject":       "subject",
}

var requiredColumns = []string{"kind", "questionnaire", "prompt", "answer"}

// ImportService loads questions in bulk from delimited files. Questionnaires
// named in the file are created on first mention; existing ones accumulate
// the new questions.
type ImportService struct {
	questionnaires QuestionnaireStore
	questions      QuestionStore
	cache          QueryCache
	log            zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(
	questionnaires QuestionnaireStore,
	questions QuestionStore,
	cache QueryCache,
	log zerolog.Logger,
) *ImportService {
	return &ImportService{
		questionnaires: questionnaires,
		questions:      questions,
		cache:          cache,
		log:            log.With().Str("component", "import_service").Logger(),
	}
}

// Import reads a CSV stream, sniffs the delimiter, and inserts every valid
// row. A missing required column is the one whole-import-aborting condition
// (plus a stream with no header line at all); everything else is a per-row
// error in the report, and a header with no data rows is an empty report.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	br := bufio.NewReader(r)
	sample, _ := br.Peek(2048)
	delim := detectDelimiter(sample)

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyImport
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if canon, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			cols[canon] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, c)
		}
	}

	report := &ImportReport{Errors: []RowError{}}
	names := make(map[string]*model.Questionnaire)
	touched := make(map[uuid.UUID]struct{})
	line := 1

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			report.Errors = append(report.Errors, RowError{Line: line, Message: "linha CSV malformada"})
			continue
		}

		q, name, subject, rowErr := parseRow(record, cols)
		if rowErr != "" {
			report.Errors = append(report.Errors, RowError{Line: line, Message: rowErr})
			continue
		}

		target, ok := names[name]
		if !ok {
			target, err = s.questionnaires.EnsureByName(ctx, name, subject)
			if err != nil {
				s.log.Error().Err(err).Int("line", line).Str("name", name).Msg("Import questionnaire resolve failed")
				report.Errors = append(report.Errors, RowError{Line: line, Message: "falha ao resolver o questionário"})
				continue
			}
			names[name] = target
		}

		q.QuestionnaireID = target.ID
		if err := s.questions.Create(ctx, q); err != nil {
			s.log.Error().Err(err).Int("line", line).Msg("Import row insert failed")
			report.Errors = append(report.Errors, RowError{Line: line, Message: "falha ao gravar a questão"})
			continue
		}
		touched[target.ID] = struct{}{}
		report.Imported++
	}

	keys := []string{config.CacheKey.QuestionnaireListKey()}
	for id := range touched {
		keys = append(keys,
			config.CacheKey.QuestionListKey(id.String()),
			config.CacheKey.SummaryKey(id.String()),
		)
	}
	s.cache.Invalidate(ctx, keys...)

	s.log.Info().
		Int("imported", report.Imported).
		Int("rejected", len(report.Errors)).
		Msg("Import finished")
	return report, nil
}

// parseRow validates one data record and builds the question to insert.
// The returned message is empty when the row is valid, and in Portuguese
// otherwise, matching the response error catalog.
func parseRow(record []string, cols map[string]int) (q *model.Question, name, subject string, msg string) {
	field := func(col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name = field("questionnaire")
	if name == "" {
		return nil, "", "", "questionário não informado"
	}
	subject = field("subject")
	if subject == "" {
		subject = model.SubjectUnclassified
	}

	prompt := field("prompt")
	if prompt == "" {
		return nil, "", "", "texto da questão vazio"
	}

	kind := model.QuestionKind(strings.ToUpper(field("kind")))
	if kind != model.KindTrueFalse && kind != model.KindMultipleChoice {
		return nil, "", "", "tipo de questão desconhecido"
	}

	var options []string
	if kind == model.KindMultipleChoice {
		options = splitOptions(field("options"))
	}
	key, err := ResolveAnswerKey(kind, field("answer"), options)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientOptions):
			msg = "questão de múltipla escolha precisa de pelo menos 2 alternativas"
		case errors.Is(err, ErrTooManyOptions):
			msg = "questão de múltipla escolha aceita no máximo 5 alternativas"
		default:
			msg = "resposta correta não corresponde a nenhuma alternativa"
		}
		return nil, "", "", msg
	}

	return &model.Question{
		Kind:        kind,
		Prompt:      prompt,
		Explanation: field("explanation"),
		AnswerKey:   key,
		Options:     options,
	}, name, subject, ""
}

// splitOptions breaks an options cell into its alternatives. Semicolon is the
// primary separator; a cell without one falls back to the pipe character.
// Surplus alternatives past the letter range are dropped, not rejected.
func splitOptions(cell string) []string {
	if cell == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(cell, ";") {
		sep = "|"
	}
	var out []string
	for _, part := range strings.Split(cell, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
		if len(out) == model.MaxOptions {
			break
		}
	}
	return out
}

// detectDelimiter sniffs the field separator from the head of the file.
// The candidate producing the most fields on the first line wins, with a
// plain "does the sample contain a semicolon" check breaking the tie.
func detectDelimiter(sample []byte) rune {
	head := sample
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	best := ','
	bestFields := 1
	for _, cand := range []rune{';', ','} {
		cr := csv.NewReader(bytes.NewReader(head))
		cr.Comma = cand
		record, err := cr.Read()
		if err == nil && len(record) > bestFields {
			best = cand
			bestFields = len(record)
		}
	}
	if bestFields == 1 && bytes.ContainsRune(sample, ';') {
		return ';'
	}
	return best
}
