package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNoQuestions  = errors.New("no questions available for exam assembly")
	ErrExamFinished = errors.New("exam is already finished")
)

// ExamDetail pairs an exam with its recorded answers.
type ExamDetail struct {
	Exam    *model.Exam        `json:"exam"`
	Answers []model.ExamAnswer `json:"answers"`
}

// ExamProgress is the live position inside an in-progress exam.
type ExamProgress struct {
	ExamID   uuid.UUID        `json:"exam_id"`
	Status   model.ExamStatus `json:"status"`
	Position int              `json:"position"`
	Size     int              `json:"size"`
	Question *PracticePrompt  `json:"question,omitempty"`
}

// ExamAnswerResult is the feedback returned after an exam submission.
type ExamAnswerResult struct {
	Correct      bool             `json:"correct"`
	AnswerKey    string           `json:"answer_key"`
	Explanation  string           `json:"explanation,omitempty"`
	CorrectCount int              `json:"correct_count"`
	Position     int              `json:"position"`
	Size         int              `json:"size"`
	Status       model.ExamStatus `json:"status"`
}

// ExamService assembles and runs simulados. An exam's question pool is frozen
// at assembly: later edits to the source questionnaires never change it, and
// questions deleted mid-exam are skipped at answer time.
type ExamService struct {
	questionnaires QuestionnaireStore
	questions      QuestionStore
	exams          ExamStore
	log            zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	questionnaires QuestionnaireStore,
	questions QuestionStore,
	exams ExamStore,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		questionnaires: questionnaires,
		questions:      questions,
		exams:          exams,
		log:            log.With().Str("component", "exam_service").Logger(),
	}
}

// CreateDirect assembles an exam by sampling Count questions at random across
// the chosen questionnaires. Reserved questionnaires are skipped. When fewer
// questions exist than requested, the exam holds what is available.
func (s *ExamService) CreateDirect(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	sources := make([]uuid.UUID, 0, len(req.QuestionnaireIDs))
	for _, id := range req.QuestionnaireIDs {
		q, err := s.questionnaires.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if q.Reserved() {
			continue
		}
		sources = append(sources, id)
	}
	if len(sources) == 0 {
		return nil, ErrNoQuestions
	}

	pool, err := s.questions.SampleByQuestionnaires(ctx, sources, req.Count)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	return s.create(ctx, req.Name, pool)
}

// CreateBalanced assembles an exam spread evenly: each subject contributes
// its requested count, split as evenly as the stock allows across that
// subject's questionnaires. A subject short on questions contributes what it
// has; the shortfall is not backfilled from other subjects.
func (s *ExamService) CreateBalanced(ctx context.Context, req *model.CreateBalancedExamRequest) (*model.Exam, error) {
	var pool []uuid.UUID
	for _, sc := range req.Subjects {
		ids, err := s.sampleSubject(ctx, sc.Subject, sc.Count)
		if err != nil {
			return nil, err
		}
		pool = append(pool, ids...)
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return s.create(ctx, req.Name, pool)
}

// sampleSubject draws count questions from one subject, balanced across its
// member questionnaires in stable name order.
func (s *ExamService) sampleSubject(ctx context.Context, subject string, count int) ([]uuid.UUID, error) {
	members, err := s.questionnaires.ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list subject %q: %w", subject, err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	memberIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}
	counts, err := s.questions.CountsByQuestionnaires(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("count subject %q: %w", subject, err)
	}

	avail := make([]int, len(memberIDs))
	for i, id := range memberIDs {
		avail[i] = counts[id]
	}
	alloc := allocateEvenly(count, avail)

	var out []uuid.UUID
	for i, n := range alloc {
		if n == 0 {
			continue
		}
		ids, err := s.questions.SampleByQuestionnaire(ctx, memberIDs[i], n)
		if err != nil {
			return nil, fmt.Errorf("sample questionnaire: %w", err)
		}
		out = append(out, ids...)
	}
	return out, nil
}

func (s *ExamService) create(ctx context.Context, name string, pool []uuid.UUID) (*model.Exam, error) {
	if len(pool) == 0 {
		return nil, ErrNoQuestions
	}
	e := &model.Exam{
		Name:        name,
		QuestionIDs: pool,
		Status:      model.ExamStatusInProgress,
	}
	if err := s.exams.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.log.Info().
		Str("exam_id", e.ID.String()).
		Str("name", e.Name).
		Int("questions", len(pool)).
		Msg("Exam assembled")
	return e, nil
}

// List retrieves all exams, newest first.
func (s *ExamService) List(ctx context.Context) ([]model.Exam, error) {
	list, err := s.exams.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []model.Exam{}
	}
	return list, nil
}

// Get retrieves an exam with its answer sheet.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*ExamDetail, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	answers, err := s.exams.ListAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.ExamAnswer{}
	}
	return &ExamDetail{Exam: e, Answers: answers}, nil
}

// Current returns the question at the exam's cursor. Pool entries whose
// question was deleted since assembly are skipped, advancing the persisted
// cursor; an exam whose remaining entries are all gone finishes.
func (s *ExamService) Current(ctx context.Context, id uuid.UUID) (*ExamProgress, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	progress := &ExamProgress{
		ExamID: e.ID,
		Status: e.Status,
		Size:   len(e.QuestionIDs),
	}
	if e.Status == model.ExamStatusFinished {
		progress.Position = e.Cursor
		return progress, nil
	}

	q, err := s.currentQuestion(ctx, e)
	if err != nil {
		return nil, err
	}
	progress.Status = e.Status
	progress.Position = e.Cursor
	if q != nil {
		progress.Question = &PracticePrompt{
			ID:      q.ID,
			Kind:    q.Kind,
			Prompt:  q.Prompt,
			Options: q.Options,
		}
	}
	return progress, nil
}

// Answer evaluates a submission against the exam's current question, records
// it on the answer sheet and advances the cursor. Reaching the end of the
// pool finishes the exam.
func (s *ExamService) Answer(ctx context.Context, id uuid.UUID, value string) (*ExamAnswerResult, error) {
	e, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.Status == model.ExamStatusFinished {
		return nil, ErrExamFinished
	}

	q, err := s.currentQuestion(ctx, e)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrExamFinished
	}

	correct := Evaluate(q, value)
	if err := s.exams.AddAnswer(ctx, &model.ExamAnswer{
		ExamID:     e.ID,
		QuestionID: q.ID,
		Correct:    correct,
		Submitted:  value,
	}); err != nil {
		return nil, fmt.Errorf("record exam answer: %w", err)
	}

	e.Cursor++
	if correct {
		e.CorrectCount++
	}
	if e.Cursor >= len(e.QuestionIDs) {
		e.Status = model.ExamStatusFinished
	}
	if err := s.exams.UpdateProgress(ctx, e.ID, e.Cursor, e.CorrectCount, e.Status); err != nil {
		return nil, fmt.Errorf("update exam progress: %w", err)
	}

	return &ExamAnswerResult{
		Correct:      correct,
		AnswerKey:    q.AnswerKey,
		Explanation:  q.Explanation,
		CorrectCount: e.CorrectCount,
		Position:     e.Cursor,
		Size:         len(e.QuestionIDs),
		Status:       e.Status,
	}, nil
}

// Delete removes an exam and its answer sheet.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}

// currentQuestion fetches the question under the cursor, walking past pool
// entries deleted since assembly. Cursor movements are persisted; nil with no
// error means the pool ran out and the exam was finished.
func (s *ExamService) currentQuestion(ctx context.Context, e *model.Exam) (*model.Question, error) {
	moved := false
	for e.Cursor < len(e.QuestionIDs) {
		q, err := s.questions.GetByID(ctx, e.QuestionIDs[e.Cursor])
		if err == nil {
			if moved {
				if err := s.exams.UpdateProgress(ctx, e.ID, e.Cursor, e.CorrectCount, e.Status); err != nil {
					return nil, fmt.Errorf("update exam progress: %w", err)
				}
			}
			return q, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		e.Cursor++
		moved = true
	}

	e.Status = model.ExamStatusFinished
	if err := s.exams.UpdateProgress(ctx, e.ID, e.Cursor, e.CorrectCount, e.Status); err != nil {
		return nil, fmt.Errorf("update exam progress: %w", err)
	}
	return nil, nil
}

// allocateEvenly splits a requested draw across members with the given stock.
// Units are dealt one at a time in member order, never exceeding a member's
// stock, until the request or the total stock runs out. The result is within
// one unit across members that still had room.
func allocateEvenly(requested int, avail []int) []int {
	alloc := make([]int, len(avail))
	remaining := requested
	for remaining > 0 {
		progressed := false
		for i := range avail {
			if remaining == 0 {
				break
			}
			if alloc[i] < avail[i] {
				alloc[i]++
				remaining--
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return alloc
}
