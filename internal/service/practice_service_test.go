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

func newPracticeFixture(t *testing.T, questionCount int) (*PracticeService, *model.Questionnaire, *fakeQuestionStore, *fakePracticePoolStore, *fakeAnswerEventStore) {
	t.Helper()

	questionnaires := newFakeQuestionnaireStore()
	questions := newFakeQuestionStore()
	events := newFakeAnswerEventStore()
	pools := newFakePracticePoolStore()

	qn := questionnaires.add("Direito Constitucional", "Direito")
	for i := 0; i < questionCount; i++ {
		require.NoError(t, questions.Create(context.Background(), &model.Question{
			QuestionnaireID: qn.ID,
			Kind:            model.KindTrueFalse,
			Prompt:          "afirmação",
			AnswerKey:       "V",
			Explanation:     "porque sim",
		}))
	}

	svc := NewPracticeService(questionnaires, questions, events, pools, &fakeCache{}, zerolog.Nop())
	return svc, qn, questions, pools, events
}

func TestPracticeService_State_CreatesAndPersistsPool(t *testing.T) {
	svc, qn, _, pools, _ := newPracticeFixture(t, 4)
	ctx := context.Background()

	view, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PoolStateLoaded, view.State)
	assert.Equal(t, 4, view.Size)
	assert.Equal(t, 0, view.Position)
	require.NotNil(t, view.Question)

	saved, err := pools.Get(ctx, qn.ID)
	require.NoError(t, err)
	assert.Len(t, saved.QuestionIDs, 4)
	assert.Equal(t, 0, saved.Cursor)
}

func TestPracticeService_State_ResumesAfterDeletion(t *testing.T) {
	svc, qn, questions, pools, _ := newPracticeFixture(t, 3)
	ctx := context.Background()

	_, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)

	// Park the cursor on the second question, then delete that question
	// behind the session's back.
	saved, err := pools.Get(ctx, qn.ID)
	require.NoError(t, err)
	saved.Cursor = 1
	require.NoError(t, pools.Save(ctx, saved))
	require.NoError(t, questions.Delete(ctx, saved.QuestionIDs[1]))

	view, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PoolStateAdvancing, view.State)
	assert.Equal(t, 2, view.Size)
	require.NotNil(t, view.Question)

	reconciled, err := pools.Get(ctx, qn.ID)
	require.NoError(t, err)
	assert.Len(t, reconciled.QuestionIDs, 2)
	assert.NotContains(t, reconciled.QuestionIDs, saved.QuestionIDs[1])
	assert.Less(t, reconciled.Cursor, len(reconciled.QuestionIDs))
}

func TestPracticeService_State_Exhausted(t *testing.T) {
	svc, qn, _, _, _ := newPracticeFixture(t, 0)

	view, err := svc.State(context.Background(), qn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PoolStateExhausted, view.State)
	assert.Equal(t, 0, view.Size)
	assert.Nil(t, view.Question)
}

func TestPracticeService_UnknownQuestionnaire(t *testing.T) {
	svc, _, _, pools, _ := newPracticeFixture(t, 1)
	ctx := context.Background()
	unknown := uuid.New()

	_, err := svc.State(ctx, unknown)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Advance(ctx, unknown, "next")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Answer(ctx, unknown, "v")
	require.ErrorIs(t, err, ErrNotFound)

	// No orphan pool row appears for the unknown id.
	_, err = pools.Get(ctx, unknown)
	require.Error(t, err)
}

func TestPracticeService_Advance_ClampsAtEdges(t *testing.T) {
	svc, qn, _, _, _ := newPracticeFixture(t, 2)
	ctx := context.Background()

	_, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)

	// prev on the first question stays put.
	view, err := svc.Advance(ctx, qn.ID, "prev")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Position)

	view, err = svc.Advance(ctx, qn.ID, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Position)

	// next past the last question parks on it.
	view, err = svc.Advance(ctx, qn.ID, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, model.PoolStateAdvancing, view.State)
}

func TestPracticeService_Answer_RecordsOneEvent(t *testing.T) {
	svc, qn, _, _, events := newPracticeFixture(t, 2)
	ctx := context.Background()

	_, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)

	result, err := svc.Answer(ctx, qn.ID, "v")
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, "V", result.AnswerKey)
	assert.Equal(t, "porque sim", result.Explanation)
	require.Len(t, events.events, 1)
	assert.True(t, events.events[0].Correct)

	// A wrong retry on the same question appends, never overwrites.
	result, err = svc.Answer(ctx, qn.ID, "f")
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Len(t, events.events, 2)
}

func TestPracticeService_Answer_EmptyPool(t *testing.T) {
	svc, qn, _, _, _ := newPracticeFixture(t, 0)

	_, err := svc.Answer(context.Background(), qn.ID, "v")
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestPracticeService_Reset_WipesHistoryAndPool(t *testing.T) {
	svc, qn, _, pools, events := newPracticeFixture(t, 3)
	ctx := context.Background()

	_, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)
	_, err = svc.Answer(ctx, qn.ID, "v")
	require.NoError(t, err)
	_, err = svc.Advance(ctx, qn.ID, "next")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, qn.ID))
	_, err = pools.Get(ctx, qn.ID)
	require.Error(t, err)
	assert.Empty(t, events.events)

	view, err := svc.State(ctx, qn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PoolStateLoaded, view.State)
	assert.Equal(t, 0, view.Position)
}

func TestReconcilePool(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name        string
		pool        []uuid.UUID
		live        []uuid.UUID
		want        []uuid.UUID
		wantChanged bool
	}{
		{"nothing deleted", []uuid.UUID{a, b, c}, []uuid.UUID{c, a, b}, []uuid.UUID{a, b, c}, false},
		{"middle entry dropped", []uuid.UUID{a, b, c}, []uuid.UUID{a, c}, []uuid.UUID{a, c}, true},
		{"all dropped", []uuid.UUID{a, b}, nil, []uuid.UUID{}, true},
		{"new live questions stay out", []uuid.UUID{a}, []uuid.UUID{a, b, c}, []uuid.UUID{a}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := reconcilePool(tt.pool, tt.live)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestClampCursor(t *testing.T) {
	tests := []struct {
		cursor, n, want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 2},
		{10, 3, 2},
		{-1, 3, 0},
		{5, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clampCursor(tt.cursor, tt.n))
	}
}
