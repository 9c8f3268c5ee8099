package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chivis/survey-relay/internal/types"
	"github.com/chivis/survey-relay/internal/utils"
	"go.uber.org/zap"
)

const (
	PhoneDigits       = 10
	CelebrationLength = 5 * time.Second
)

var ErrNotSubmitted = errors.New("questionnaire has not been submitted")

// Submitter delivers a finished record to the relay.
type Submitter interface {
	Submit(ctx context.Context, record types.AnswerRecord) (*types.SubmitResponse, error)
}

// ValidationError rejects an Advance from the current step.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Session walks one user through the questionnaire. It is not safe for
// concurrent use; only the submission runs in the background.
type Session struct {
	questions []Question
	step      int
	record    types.AnswerRecord
	alert     string

	submitter   Submitter
	now         func() time.Time
	completedAt time.Time

	done       chan struct{}
	submitResp *types.SubmitResponse
	submitErr  error
}

func NewSession(questions []Question, submitter Submitter) (*Session, error) {
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	if submitter == nil {
		return nil, errors.New("submitter is required")
	}
	return &Session{
		questions: questions,
		submitter: submitter,
		now:       time.Now,
	}, nil
}

func (s *Session) Step() int { return s.step }

func (s *Session) Len() int { return len(s.questions) }

func (s *Session) Current() Question { return s.questions[s.step] }

// Alert is the message from the last rejected Advance, if still showing.
func (s *Session) Alert() string { return s.alert }

func (s *Session) DismissAlert() { s.alert = "" }

// Completed reports whether the closing step has been reached.
func (s *Session) Completed() bool { return s.step == len(s.questions)-1 }

func (s *Session) Record() types.AnswerRecord { return s.record }

// IsFinalQuestion reports whether the next successful Advance completes the
// questionnaire.
func (s *Session) IsFinalQuestion() bool {
	return s.step == len(s.questions)-2
}

// Progress is the share of steps passed, as a rounded percentage.
func (s *Session) Progress() int {
	return int(math.Round(100 * float64(s.step) / float64(len(s.questions)-1)))
}

// Celebrating reports whether the completion effect is still showing.
func (s *Session) Celebrating() bool {
	if s.completedAt.IsZero() {
		return false
	}
	return s.now().Sub(s.completedAt) < CelebrationLength
}

// SetAnswer stores a string answer. Picking an "other" option clears the
// free-text companion so a stale value is not carried over.
func (s *Session) SetAnswer(field, value string) error {
	prev, ok := s.record.Field(field)
	if !ok {
		return fmt.Errorf("unknown answer field %q", field)
	}
	if field == "whatsappNumber" {
		value = NormalizePhone(value)
	}
	s.record.SetField(field, value)

	for _, q := range s.questions {
		if q.Field == field && q.HasOther() && value == q.OtherValue && prev != q.OtherValue {
			s.record.SetField(q.OtherField, "")
		}
	}
	return nil
}

// SetPhone keeps only digits, up to PhoneDigits of them.
func (s *Session) SetPhone(raw string) {
	s.record.WhatsAppNumber = NormalizePhone(raw)
}

func (s *Session) SetAcceptedTerms(accepted bool) {
	s.record.AcceptedTerms = accepted
}

// NormalizePhone strips everything but digits and truncates to PhoneDigits.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == PhoneDigits {
				break
			}
		}
	}
	return b.String()
}

// Advance validates the current step and moves forward. The first arrival
// at the last step starts the single submission attempt without waiting for it.
func (s *Session) Advance() error {
	if err := ValidateStep(s.Current(), &s.record); err != nil {
		s.alert = err.Error()
		return err
	}
	s.alert = ""

	if s.Completed() {
		return nil
	}
	s.step++

	if s.Completed() && s.done == nil {
		s.complete()
	}
	return nil
}

// Retreat moves back one step without validating. It reports whether the
// step changed.
func (s *Session) Retreat() bool {
	if s.step == 0 {
		return false
	}
	s.step--
	s.alert = ""
	return true
}

func (s *Session) complete() {
	s.completedAt = s.now()
	s.done = make(chan struct{})

	payload := s.Resolved()
	payload.Timestamp = s.completedAt.UTC().Format(types.TimestampLayout)

	go func() {
		defer close(s.done)
		resp, err := s.submitter.Submit(context.Background(), payload)
		if err != nil {
			utils.Zlog.Error("Error saving questionnaire", zap.Error(err))
		} else {
			utils.Zlog.Info("Questionnaire saved")
		}
		s.submitResp, s.submitErr = resp, err
	}()
}

// Resolved returns the record with each "other" option replaced by the
// text the user typed for it.
func (s *Session) Resolved() types.AnswerRecord {
	record := s.record
	for _, q := range s.questions {
		if !q.HasOther() {
			continue
		}
		if v, _ := record.Field(q.Field); v == q.OtherValue {
			other, _ := record.Field(q.OtherField)
			record.SetField(q.Field, other)
		}
	}
	return record
}

// Wait blocks until the submission finishes or ctx ends and returns its
// outcome. Failures never change the session's step.
func (s *Session) Wait(ctx context.Context) (*types.SubmitResponse, error) {
	if s.done == nil {
		return nil, ErrNotSubmitted
	}
	select {
	case <-s.done:
		return s.submitResp, s.submitErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ValidateStep checks the answer a question requires before moving on.
func ValidateStep(q Question, record *types.AnswerRecord) error {
	switch q.Kind {
	case KindSelect, KindSelectOther:
		value, _ := record.Field(q.Field)
		if q.HasOther() && value == q.OtherValue {
			if other, _ := record.Field(q.OtherField); other == "" {
				return &ValidationError{Field: q.OtherField, Message: "Por favor, especifica tu respuesta"}
			}
		}
		if value == "" {
			return &ValidationError{Field: q.Field, Message: "Por favor, selecciona una opción"}
		}
	case KindPhone:
		value, _ := record.Field(q.Field)
		if !isPhone(value) {
			return &ValidationError{
				Field:   q.Field,
				Message: fmt.Sprintf("Por favor, ingresa un número de WhatsApp válido (%d dígitos)", PhoneDigits),
			}
		}
	case KindTerms:
		if !record.AcceptedTerms {
			return &ValidationError{Field: "aceptaTerminos", Message: "Debes aceptar los términos y condiciones para continuar"}
		}
	}
	return nil
}

func isPhone(v string) bool {
	if len(v) != PhoneDigits {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
