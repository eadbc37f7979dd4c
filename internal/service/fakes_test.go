package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quizdeck/quizdeck-backend/internal/model"
)

// In-memory store fakes. They mirror the repository contracts, including the
// pgx.ErrNoRows convention, so services can be tested without Postgres.

type fakeQuestionnaireStore struct {
	byID map[uuid.UUID]*model.Questionnaire
}

func newFakeQuestionnaireStore() *fakeQuestionnaireStore {
	return &fakeQuestionnaireStore{byID: make(map[uuid.UUID]*model.Questionnaire)}
}

func (f *fakeQuestionnaireStore) add(name, subject string) *model.Questionnaire {
	q := &model.Questionnaire{
		ID:        uuid.New(),
		Name:      name,
		Subject:   subject,
		CreatedAt: time.Now(),
	}
	f.byID[q.ID] = q
	return q
}

func (f *fakeQuestionnaireStore) Create(ctx context.Context, q *model.Questionnaire) error {
	for _, existing := range f.byID {
		if existing.Name == q.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "questionnaires_name_key"}
		}
	}
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	if q.Subject == "" {
		q.Subject = model.SubjectUnclassified
	}
	f.byID[q.ID] = q
	return nil
}

func (f *fakeQuestionnaireStore) EnsureByName(ctx context.Context, name, subject string) (*model.Questionnaire, error) {
	for _, q := range f.byID {
		if q.Name == name {
			return q, nil
		}
	}
	return f.add(name, subject), nil
}

func (f *fakeQuestionnaireStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Questionnaire, error) {
	q, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (f *fakeQuestionnaireStore) GetByName(ctx context.Context, name string) (*model.Questionnaire, error) {
	for _, q := range f.byID {
		if q.Name == name {
			return q, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeQuestionnaireStore) List(ctx context.Context) ([]model.Questionnaire, error) {
	var out []model.Questionnaire
	for _, q := range f.byID {
		out = append(out, *q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeQuestionnaireStore) ListBySubject(ctx context.Context, subject string) ([]model.Questionnaire, error) {
	var out []model.Questionnaire
	for _, q := range f.byID {
		if q.Subject == subject && !q.Reserved() {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeQuestionnaireStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeQuestionStore struct {
	byID  map[uuid.UUID]*model.Question
	order []uuid.UUID
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{byID: make(map[uuid.UUID]*model.Question)}
}

func (f *fakeQuestionStore) Create(ctx context.Context, q *model.Question) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now()
	f.byID[q.ID] = q
	f.order = append(f.order, q.ID)
	return nil
}

func (f *fakeQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

func (f *fakeQuestionStore) ListByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]model.Question, error) {
	var out []model.Question
	for _, id := range f.order {
		if q, ok := f.byID[id]; ok && q.QuestionnaireID == questionnaireID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListIDsByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, id := range f.order {
		if q, ok := f.byID[id]; ok && q.QuestionnaireID == questionnaireID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) CountByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) (int, error) {
	ids, _ := f.ListIDsByQuestionnaire(ctx, questionnaireID)
	return len(ids), nil
}

func (f *fakeQuestionStore) CountsByQuestionnaires(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	for _, id := range ids {
		n, _ := f.CountByQuestionnaire(ctx, id)
		if n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

func (f *fakeQuestionStore) SampleByQuestionnaires(ctx context.Context, ids []uuid.UUID, n int) ([]uuid.UUID, error) {
	members := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range f.order {
		if len(out) == n {
			break
		}
		if q, ok := f.byID[id]; ok {
			if _, in := members[q.QuestionnaireID]; in {
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) SampleByQuestionnaire(ctx context.Context, id uuid.UUID, n int) ([]uuid.UUID, error) {
	return f.SampleByQuestionnaires(ctx, []uuid.UUID{id}, n)
}

func (f *fakeQuestionStore) UpdateExplanation(ctx context.Context, id uuid.UUID, explanation string) error {
	q, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.Explanation = explanation
	return nil
}

func (f *fakeQuestionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeAnswerEventStore struct {
	events []model.AnswerEvent
	nextID int64
}

func newFakeAnswerEventStore() *fakeAnswerEventStore {
	return &fakeAnswerEventStore{}
}

func (f *fakeAnswerEventStore) Create(ctx context.Context, ev *model.AnswerEvent) error {
	f.nextID++
	ev.ID = f.nextID
	ev.AnsweredAt = time.Now()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeAnswerEventStore) LatestPerQuestion(ctx context.Context, questionnaireID uuid.UUID) (int, int, error) {
	latest := make(map[uuid.UUID]bool)
	for _, ev := range f.events {
		if ev.QuestionnaireID == questionnaireID {
			latest[ev.QuestionID] = ev.Correct
		}
	}
	correct := 0
	for _, ok := range latest {
		if ok {
			correct++
		}
	}
	return len(latest), correct, nil
}

func (f *fakeAnswerEventStore) DeleteByQuestionnaire(ctx context.Context, questionnaireID uuid.UUID) error {
	var kept []model.AnswerEvent
	for _, ev := range f.events {
		if ev.QuestionnaireID != questionnaireID {
			kept = append(kept, ev)
		}
	}
	f.events = kept
	return nil
}

type fakePracticePoolStore struct {
	byID map[uuid.UUID]*model.PracticePool
}

func newFakePracticePoolStore() *fakePracticePoolStore {
	return &fakePracticePoolStore{byID: make(map[uuid.UUID]*model.PracticePool)}
}

func (f *fakePracticePoolStore) Get(ctx context.Context, questionnaireID uuid.UUID) (*model.PracticePool, error) {
	p, ok := f.byID[questionnaireID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	cp.QuestionIDs = append([]uuid.UUID(nil), p.QuestionIDs...)
	return &cp, nil
}

func (f *fakePracticePoolStore) Save(ctx context.Context, p *model.PracticePool) error {
	p.UpdatedAt = time.Now()
	cp := *p
	cp.QuestionIDs = append([]uuid.UUID(nil), p.QuestionIDs...)
	f.byID[p.QuestionnaireID] = &cp
	return nil
}

func (f *fakePracticePoolStore) Delete(ctx context.Context, questionnaireID uuid.UUID) error {
	delete(f.byID, questionnaireID)
	return nil
}

type fakeExamStore struct {
	byID    map[uuid.UUID]*model.Exam
	answers []model.ExamAnswer
	nextID  int64
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{byID: make(map[uuid.UUID]*model.Exam)}
}

func (f *fakeExamStore) Create(ctx context.Context, e *model.Exam) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExamStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	cp.QuestionIDs = append([]uuid.UUID(nil), e.QuestionIDs...)
	return &cp, nil
}

func (f *fakeExamStore) List(ctx context.Context) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.byID {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeExamStore) UpdateProgress(ctx context.Context, id uuid.UUID, cursor, correctCount int, status model.ExamStatus) error {
	e, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Cursor = cursor
	e.CorrectCount = correctCount
	e.Status = status
	e.UpdatedAt = time.Now()
	return nil
}

func (f *fakeExamStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeExamStore) AddAnswer(ctx context.Context, a *model.ExamAnswer) error {
	f.nextID++
	a.ID = f.nextID
	a.AnsweredAt = time.Now()
	f.answers = append(f.answers, *a)
	return nil
}

func (f *fakeExamStore) ListAnswers(ctx context.Context, examID uuid.UUID) ([]model.ExamAnswer, error) {
	var out []model.ExamAnswer
	for _, a := range f.answers {
		if a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeCache is a pass-through cache that records invalidated keys.
type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dst interface{}) bool { return false }
func (f *fakeCache) SetJSON(ctx context.Context, key string, v interface{})       {}
func (f *fakeCache) Invalidate(ctx context.Context, keys ...string) {
	f.invalidated = append(f.invalidated, keys...)
}
