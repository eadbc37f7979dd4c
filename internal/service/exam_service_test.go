package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck-backend/internal/model"
)

type examFixture struct {
	svc            *ExamService
	questionnaires *fakeQuestionnaireStore
	questions      *fakeQuestionStore
	exams          *fakeExamStore
}

func newExamFixture(t *testing.T) *examFixture {
	t.Helper()
	questionnaires := newFakeQuestionnaireStore()
	questions := newFakeQuestionStore()
	exams := newFakeExamStore()
	return &examFixture{
		svc:            NewExamService(questionnaires, questions, exams, zerolog.Nop()),
		questionnaires: questionnaires,
		questions:      questions,
		exams:          exams,
	}
}

func (f *examFixture) seed(t *testing.T, name, subject string, questionCount int) *model.Questionnaire {
	t.Helper()
	qn := f.questionnaires.add(name, subject)
	for i := 0; i < questionCount; i++ {
		require.NoError(t, f.questions.Create(context.Background(), &model.Question{
			QuestionnaireID: qn.ID,
			Kind:            model.KindTrueFalse,
			Prompt:          "afirmação",
			AnswerKey:       "V",
		}))
	}
	return qn
}

func TestExamService_CreateDirect(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 3)

	exam, err := f.svc.CreateDirect(context.Background(), &model.CreateExamRequest{
		Name:             "Simulado 1",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Simulado 1", exam.Name)
	assert.Len(t, exam.QuestionIDs, 2)
	assert.Equal(t, model.ExamStatusInProgress, exam.Status)
	assert.Equal(t, 0, exam.Cursor)
}

func TestExamService_CreateDirect_ClampsToStock(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 3)

	exam, err := f.svc.CreateDirect(context.Background(), &model.CreateExamRequest{
		Name:             "Simulado grande",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            5,
	})
	require.NoError(t, err)
	assert.Len(t, exam.QuestionIDs, 3)
}

func TestExamService_CreateDirect_SkipsReserved(t *testing.T) {
	f := newExamFixture(t)
	favorites := f.seed(t, model.QuestionnaireFavorites, model.SubjectUnclassified, 5)

	_, err := f.svc.CreateDirect(context.Background(), &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{favorites.ID},
		Count:            3,
	})
	require.ErrorIs(t, err, ErrNoQuestions)
}

func TestExamService_CreateDirect_UnknownQuestionnaire(t *testing.T) {
	f := newExamFixture(t)

	_, err := f.svc.CreateDirect(context.Background(), &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{uuid.New()},
		Count:            3,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExamService_CreateBalanced(t *testing.T) {
	f := newExamFixture(t)
	f.seed(t, "Gramática", "Línguas", 10)
	f.seed(t, "Literatura", "Línguas", 10)
	f.seed(t, "Álgebra", "Exatas", 10)

	exam, err := f.svc.CreateBalanced(context.Background(), &model.CreateBalancedExamRequest{
		Name: "Simulado equilibrado",
		Subjects: []model.SubjectCountRequest{
			{Subject: "Línguas", Count: 4},
			{Subject: "Exatas", Count: 3},
		},
	})
	require.NoError(t, err)
	assert.Len(t, exam.QuestionIDs, 7)
}

func TestExamService_CreateBalanced_ShortSubjectContributesWhatItHas(t *testing.T) {
	f := newExamFixture(t)
	f.seed(t, "Gramática", "Línguas", 2)

	exam, err := f.svc.CreateBalanced(context.Background(), &model.CreateBalancedExamRequest{
		Name: "Simulado curto",
		Subjects: []model.SubjectCountRequest{
			{Subject: "Línguas", Count: 10},
			{Subject: "Inexistente", Count: 5},
		},
	})
	require.NoError(t, err)
	assert.Len(t, exam.QuestionIDs, 2)
}

func TestExamService_AnswerFlow(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 2)
	ctx := context.Background()

	exam, err := f.svc.CreateDirect(ctx, &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            2,
	})
	require.NoError(t, err)

	result, err := f.svc.Answer(ctx, exam.ID, "v")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 1, result.Position)
	assert.Equal(t, model.ExamStatusInProgress, result.Status)

	result, err = f.svc.Answer(ctx, exam.ID, "f")
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, model.ExamStatusFinished, result.Status)

	// The answer sheet holds both submissions.
	detail, err := f.svc.Get(ctx, exam.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Answers, 2)
	assert.Equal(t, 1, detail.Exam.CorrectCount)

	_, err = f.svc.Answer(ctx, exam.ID, "v")
	require.ErrorIs(t, err, ErrExamFinished)
}

func TestExamService_PoolIsFrozen(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 2)
	ctx := context.Background()

	exam, err := f.svc.CreateDirect(ctx, &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            2,
	})
	require.NoError(t, err)

	// Questions added after assembly never join the exam.
	f.seed(t, "Redação", "Línguas", 5)
	stored, err := f.svc.Get(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.QuestionIDs, stored.Exam.QuestionIDs)
}

func TestExamService_Current_SkipsDeletedQuestions(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 2)
	ctx := context.Background()

	exam, err := f.svc.CreateDirect(ctx, &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            2,
	})
	require.NoError(t, err)

	require.NoError(t, f.questions.Delete(ctx, exam.QuestionIDs[0]))

	progress, err := f.svc.Current(ctx, exam.ID)
	require.NoError(t, err)
	require.NotNil(t, progress.Question)
	assert.Equal(t, exam.QuestionIDs[1], progress.Question.ID)
	assert.Equal(t, 1, progress.Position)
}

func TestExamService_Current_FinishesWhenPoolEmptiesOut(t *testing.T) {
	f := newExamFixture(t)
	qn := f.seed(t, "Português", "Línguas", 1)
	ctx := context.Background()

	exam, err := f.svc.CreateDirect(ctx, &model.CreateExamRequest{
		Name:             "Simulado",
		QuestionnaireIDs: []uuid.UUID{qn.ID},
		Count:            1,
	})
	require.NoError(t, err)

	require.NoError(t, f.questions.Delete(ctx, exam.QuestionIDs[0]))

	progress, err := f.svc.Current(ctx, exam.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExamStatusFinished, progress.Status)
	assert.Nil(t, progress.Question)
}

func TestAllocateEvenly(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		avail     []int
		want      []int
	}{
		{"even split", 6, []int{10, 10, 10}, []int{2, 2, 2}},
		{"remainder goes left to right", 7, []int{10, 10, 10}, []int{3, 2, 2}},
		{"capacity caps a member", 6, []int{1, 10, 10}, []int{1, 3, 2}},
		{"request exceeds total stock", 20, []int{2, 3}, []int{2, 3}},
		{"empty member contributes nothing", 4, []int{0, 5, 5}, []int{0, 2, 2}},
		{"single member", 3, []int{9}, []int{3}},
		{"zero request", 0, []int{5, 5}, []int{0, 0}},
		{"no members", 3, []int{}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocateEvenly(tt.requested, tt.avail)
			assert.Equal(t, tt.want, got)

			sum := 0
			for _, n := range got {
				sum += n
			}
			total := 0
			for _, a := range tt.avail {
				total += a
			}
			if tt.requested < total {
				total = tt.requested
			}
			assert.Equal(t, total, sum)
		})
	}
}
