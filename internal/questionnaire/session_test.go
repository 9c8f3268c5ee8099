package questionnaire

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chivis/survey-relay/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu      sync.Mutex
	records []types.AnswerRecord
	err     error
}

func (r *recordingSubmitter) Submit(ctx context.Context, record types.AnswerRecord) (*types.SubmitResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	if r.err != nil {
		return nil, r.err
	}
	return &types.SubmitResponse{Success: true}, nil
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func newTestSession(t *testing.T) (*Session, *recordingSubmitter) {
	t.Helper()
	questions, err := DefaultQuestions()
	require.NoError(t, err)
	sub := &recordingSubmitter{}
	s, err := NewSession(questions, sub)
	require.NoError(t, err)
	return s, sub
}

// answer fills in a valid response for the current step.
func answer(t *testing.T, s *Session) {
	t.Helper()
	q := s.Current()
	switch q.Kind {
	case KindSelect, KindSelectOther:
		require.NoError(t, s.SetAnswer(q.Field, q.Options[0].Value))
	case KindPhone:
		s.SetPhone("300 123 4567")
	case KindTerms:
		s.SetAcceptedTerms(true)
	}
}

func TestAdvance_BlockedOnIncompleteStep(t *testing.T) {
	s, _ := newTestSession(t)

	for s.Step() < s.Len()-1 {
		i := s.Step()
		q := s.Current()
		switch q.Kind {
		case KindSelect, KindSelectOther, KindPhone, KindTerms:
			err := s.Advance()
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "step %d (%s) should reject", i, q.ID)
			assert.Equal(t, i, s.Step())
			assert.NotEmpty(t, s.Alert())
		}
		answer(t, s)
		require.NoError(t, s.Advance(), "step %d (%s)", i, q.ID)
		assert.Equal(t, i+1, s.Step())
		assert.Empty(t, s.Alert())
	}
}

func TestRetreat(t *testing.T) {
	s, _ := newTestSession(t)
	assert.False(t, s.Retreat())
	assert.Equal(t, 0, s.Step())

	for s.Step() < 6 {
		answer(t, s)
		require.NoError(t, s.Advance())
	}
	before := s.Record()

	for i := s.Step(); i > 0; i-- {
		assert.True(t, s.Retreat())
		assert.Equal(t, i-1, s.Step())
		assert.Equal(t, before, s.Record())
	}
	assert.False(t, s.Retreat())
}

func TestAdvance_Phone(t *testing.T) {
	s, _ := newTestSession(t)
	for s.Current().Kind != KindPhone {
		answer(t, s)
		require.NoError(t, s.Advance())
	}
	step := s.Step()

	s.SetPhone("30012")
	assert.Error(t, s.Advance())
	assert.Equal(t, step, s.Step())

	s.SetPhone("3001234567")
	assert.NoError(t, s.Advance())
	assert.Equal(t, step+1, s.Step())
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "3001234567", NormalizePhone("(300) 123-4567"))
	assert.Equal(t, "3001234567", NormalizePhone("300-123-4567-89"))
	assert.Equal(t, "", NormalizePhone("abc"))
	assert.Equal(t, "12", NormalizePhone("١٢12"))
}

func TestAdvance_OtherRequiresText(t *testing.T) {
	s, _ := newTestSession(t)
	for s.Current().ID != "ciudad" {
		answer(t, s)
		require.NoError(t, s.Advance())
	}
	step := s.Step()

	require.NoError(t, s.SetAnswer("ciudad", "otra"))
	err := s.Advance()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "ciudadOtra", vErr.Field)
	assert.Equal(t, step, s.Step())

	require.NoError(t, s.SetAnswer("ciudadOtra", "Leticia"))
	require.NoError(t, s.Advance())
	assert.Equal(t, step+1, s.Step())

	// Any non-empty text is accepted, as typed.
	require.True(t, s.Retreat())
	require.NoError(t, s.SetAnswer("ciudadOtra", " "))
	require.NoError(t, s.Advance())
	assert.Equal(t, " ", s.Resolved().City)
}

func TestSetAnswer_OtherResetsCompanion(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.SetAnswer("ciudadOtra", "Leticia"))
	require.NoError(t, s.SetAnswer("ciudad", "otra"))
	assert.Equal(t, "", s.Record().CityOther)

	require.NoError(t, s.SetAnswer("ciudadOtra", "Leticia"))
	require.NoError(t, s.SetAnswer("ciudad", "otra"))
	assert.Equal(t, "Leticia", s.Record().CityOther)

	assert.Error(t, s.SetAnswer("color", "rojo"))
}

func TestCompletion_SubmitsOnceWithResolvedValues(t *testing.T) {
	s, sub := newTestSession(t)
	clock := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for !s.Completed() {
		switch s.Current().ID {
		case "ciudad":
			require.NoError(t, s.SetAnswer("ciudad", "otra"))
			require.NoError(t, s.SetAnswer("ciudadOtra", "Leticia"))
		case "estilo":
			require.NoError(t, s.SetAnswer("estilo", "otro"))
			require.NoError(t, s.SetAnswer("estiloOtro", "bohemio"))
		default:
			answer(t, s)
		}
		require.NoError(t, s.Advance())
	}

	assert.Equal(t, 100, s.Progress())
	assert.True(t, s.Celebrating())

	resp, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)

	require.Equal(t, 1, sub.count())
	sent := sub.records[0]
	assert.Equal(t, "Leticia", sent.City)
	assert.Equal(t, "bohemio", sent.Style)
	assert.Equal(t, "3001234567", sent.WhatsAppNumber)
	assert.Equal(t, "2025-05-04T10:00:00.000Z", sent.Timestamp)
	assert.True(t, sent.AcceptedTerms)

	// The record itself keeps the sentinel; only the payload is resolved.
	assert.Equal(t, "otra", s.Record().City)

	require.NoError(t, s.Advance())
	assert.True(t, s.Retreat())
	answer(t, s)
	require.NoError(t, s.Advance())
	_, _ = s.Wait(context.Background())
	assert.Equal(t, 1, sub.count())

	clock = clock.Add(CelebrationLength)
	assert.False(t, s.Celebrating())
}

func TestCompletion_FailureDoesNotBlockTransition(t *testing.T) {
	s, sub := newTestSession(t)
	sub.err = errors.New("relay down")

	for !s.Completed() {
		answer(t, s)
		require.NoError(t, s.Advance())
	}
	assert.Equal(t, s.Len()-1, s.Step())

	_, err := s.Wait(context.Background())
	assert.EqualError(t, err, "relay down")
	assert.True(t, s.Completed())
}

func TestWait_NotSubmitted(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNotSubmitted)
}

func TestProgress(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, 0, s.Progress())

	last := 0
	for !s.Completed() {
		answer(t, s)
		require.NoError(t, s.Advance())
		p := s.Progress()
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 100, last)

	// 12 steps: index 1 of 11 → 9%.
	s2, _ := newTestSession(t)
	require.NoError(t, s2.Advance())
	assert.Equal(t, 9, s2.Progress())
}
