package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/rs/zerolog"
)

// ErrPoolExhausted is returned when a practice pool has no questions at all.
var ErrPoolExhausted = errors.New("practice pool has no questions")

// PracticeView is the practice session snapshot returned to the client.
// Question carries the full record except the answer key and explanation,
// which are only revealed after an answer is submitted.
type PracticeView struct {
	State    model.PoolState `json:"state"`
	Position int             `json:"position"`
	Size     int             `json:"size"`
	Question *PracticePrompt `json:"question,omitempty"`
}

// PracticePrompt is the unanswered face of a question.
type PracticePrompt struct {
	ID      uuid.UUID          `json:"id"`
	Kind    model.QuestionKind `json:"kind"`
	Prompt  string             `json:"prompt"`
	Options []string           `json:"options,omitempty"`
}

// PracticeResult is the feedback returned after a submission.
type PracticeResult struct {
	Correct     bool   `json:"correct"`
	AnswerKey   string `json:"answer_key"`
	Explanation string `json:"explanation,omitempty"`
}

// PracticeService drives resumable, shuffled practice sessions. Each
// questionnaire has at most one persisted (pool, cursor) pair, written back
// on every state change so a restart resumes exactly where it left off.
type PracticeService struct {
	questionnaires QuestionnaireStore
	questions      QuestionStore
	events         AnswerEventStore
	pools          PracticePoolStore
	cache          QueryCache
	log            zerolog.Logger
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(
	questionnaires QuestionnaireStore,
	questions QuestionStore,
	events AnswerEventStore,
	pools PracticePoolStore,
	cache QueryCache,
	log zerolog.Logger,
) *PracticeService {
	return &PracticeService{
		questionnaires: questionnaires,
		questions:      questions,
		events:         events,
		pools:          pools,
		cache:          cache,
		log:            log.With().Str("component", "practice_service").Logger(),
	}
}

// State loads or resumes the practice session for a questionnaire. A missing
// pool is created from a fresh shuffle of the live question ids; an existing
// pool is reconciled against the live set so deleted questions vanish without
// disturbing the remaining order.
func (s *PracticeService) State(ctx context.Context, questionnaireID uuid.UUID) (*PracticeView, error) {
	pool, state, err := s.loadPool(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, pool, state)
}

// Advance moves the practice cursor one step. The cursor clamps at both
// edges, so advancing past the last question simply stays on it.
func (s *PracticeService) Advance(ctx context.Context, questionnaireID uuid.UUID, direction string) (*PracticeView, error) {
	pool, _, err := s.loadPool(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if len(pool.QuestionIDs) == 0 {
		return s.view(ctx, pool, model.PoolStateExhausted)
	}

	next := pool.Cursor
	switch direction {
	case "next":
		next++
	case "prev":
		next--
	}
	next = clampCursor(next, len(pool.QuestionIDs))
	if next != pool.Cursor {
		pool.Cursor = next
		if err := s.pools.Save(ctx, pool); err != nil {
			return nil, fmt.Errorf("save practice pool: %w", err)
		}
	}
	return s.view(ctx, pool, model.PoolStateAdvancing)
}

// Answer evaluates a submission against the current question and records
// exactly one answer event, correct or not. The cursor does not move; the
// client advances explicitly so the feedback can be read first.
func (s *PracticeService) Answer(ctx context.Context, questionnaireID uuid.UUID, value string) (*PracticeResult, error) {
	pool, _, err := s.loadPool(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	if len(pool.QuestionIDs) == 0 {
		return nil, ErrPoolExhausted
	}

	q, err := s.questions.GetByID(ctx, pool.QuestionIDs[pool.Cursor])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	correct := Evaluate(q, value)
	ev := &model.AnswerEvent{
		QuestionnaireID: questionnaireID,
		QuestionID:      q.ID,
		Correct:         correct,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("record answer event: %w", err)
	}

	s.cache.Invalidate(ctx, config.CacheKey.SummaryKey(questionnaireID.String()))
	return &PracticeResult{
		Correct:     correct,
		AnswerKey:   q.AnswerKey,
		Explanation: q.Explanation,
	}, nil
}

// Reset wipes the practice session: the answer history is purged and the
// persisted pool discarded, so the next State call reshuffles from scratch.
func (s *PracticeService) Reset(ctx context.Context, questionnaireID uuid.UUID) error {
	if err := s.events.DeleteByQuestionnaire(ctx, questionnaireID); err != nil {
		return fmt.Errorf("purge answer events: %w", err)
	}
	if err := s.pools.Delete(ctx, questionnaireID); err != nil {
		return fmt.Errorf("discard practice pool: %w", err)
	}
	s.cache.Invalidate(ctx, config.CacheKey.SummaryKey(questionnaireID.String()))
	s.log.Info().Str("questionnaire_id", questionnaireID.String()).Msg("Practice session reset")
	return nil
}

// loadPool fetches and reconciles the pool, creating it on first use. Every
// session entry point goes through here, so the questionnaire-existence check
// lives here too.
func (s *PracticeService) loadPool(ctx context.Context, questionnaireID uuid.UUID) (*model.PracticePool, model.PoolState, error) {
	if _, err := s.questionnaires.GetByID(ctx, questionnaireID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	live, err := s.questions.ListIDsByQuestionnaire(ctx, questionnaireID)
	if err != nil {
		return nil, "", fmt.Errorf("list question ids: %w", err)
	}

	pool, err := s.pools.Get(ctx, questionnaireID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", err
		}
		pool = &model.PracticePool{
			QuestionnaireID: questionnaireID,
			QuestionIDs:     shuffled(live),
			Cursor:          0,
		}
		if err := s.pools.Save(ctx, pool); err != nil {
			return nil, "", fmt.Errorf("save practice pool: %w", err)
		}
		return pool, model.PoolStateLoaded, nil
	}

	ids, changed := reconcilePool(pool.QuestionIDs, live)
	cursor := clampCursor(pool.Cursor, len(ids))
	if changed || cursor != pool.Cursor {
		pool.QuestionIDs = ids
		pool.Cursor = cursor
		if err := s.pools.Save(ctx, pool); err != nil {
			return nil, "", fmt.Errorf("save practice pool: %w", err)
		}
	}

	state := model.PoolStateAdvancing
	if len(pool.QuestionIDs) == 0 {
		state = model.PoolStateExhausted
	}
	return pool, state, nil
}

func (s *PracticeService) view(ctx context.Context, pool *model.PracticePool, state model.PoolState) (*PracticeView, error) {
	v := &PracticeView{
		State:    state,
		Position: pool.Cursor,
		Size:     len(pool.QuestionIDs),
	}
	if len(pool.QuestionIDs) == 0 {
		v.State = model.PoolStateExhausted
		return v, nil
	}

	q, err := s.questions.GetByID(ctx, pool.QuestionIDs[pool.Cursor])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v.Question = &PracticePrompt{
		ID:      q.ID,
		Kind:    q.Kind,
		Prompt:  q.Prompt,
		Options: q.Options,
	}
	return v, nil
}

// reconcilePool intersects a persisted pool with the live question ids,
// preserving the pool's order. The second return reports whether anything
// was dropped. Live questions added after the shuffle stay out: they join
// on the next reshuffle, never mid-session.
func reconcilePool(pool, live []uuid.UUID) ([]uuid.UUID, bool) {
	alive := make(map[uuid.UUID]struct{}, len(live))
	for _, id := range live {
		alive[id] = struct{}{}
	}

	kept := pool[:0:0]
	for _, id := range pool {
		if _, ok := alive[id]; ok {
			kept = append(kept, id)
		}
	}
	return kept, len(kept) != len(pool)
}

// clampCursor forces a cursor into [0, n); an empty pool clamps to 0.
func clampCursor(cursor, n int) int {
	if n == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// shuffled returns a copied, randomly permuted id slice.
func shuffled(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
