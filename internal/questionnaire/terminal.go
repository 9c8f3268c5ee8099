package questionnaire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BackCommand typed on any step retreats one step.
const BackCommand = "<"

// Terminal renders a session as line-based prompts and feeds the answers
// back into it. Each step is dispatched on its question kind.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

// Run drives s until the closing step is shown. Input ending early returns
// io.ErrUnexpectedEOF.
func (t *Terminal) Run(s *Session) error {
	for {
		q := s.Current()
		t.printf("\n[%3d%%] %s\n", s.Progress(), q.Prompt)
		if q.Description != "" {
			t.printf("%s\n", q.Description)
		}

		if s.Completed() {
			t.renderClosing(s, q)
			return nil
		}
		if s.IsFinalQuestion() {
			t.printf("(Último paso: al continuar se envían tus respuestas)\n")
		}

		line, err := t.readAnswer(s, q)
		if err != nil {
			return err
		}
		if line == BackCommand {
			s.Retreat()
			continue
		}

		if err := s.Advance(); err != nil {
			t.printf("! %s\n", s.Alert())
			s.DismissAlert()
			continue
		}
		t.echoChoice(s, q)
	}
}

func (t *Terminal) readAnswer(s *Session, q Question) (string, error) {
	switch q.Kind {
	case KindWelcome:
		t.printf("(Enter para comenzar)\n")
		return t.readLine()

	case KindSelect, KindSelectOther:
		for i, o := range q.Options {
			t.printf("  %d) %s\n", i+1, o.Label)
		}
		line, err := t.readLine()
		if err != nil || line == BackCommand {
			return line, err
		}
		value := q.optionValue(line)
		if err := s.SetAnswer(q.Field, value); err != nil {
			return "", err
		}
		if q.HasOther() && value == q.OtherValue {
			t.printf("Especifica: ")
			other, err := t.readLine()
			if err != nil {
				return "", err
			}
			if err := s.SetAnswer(q.OtherField, other); err != nil {
				return "", err
			}
		}
		return line, nil

	case KindPhone:
		line, err := t.readLine()
		if err == nil && line != BackCommand {
			s.SetPhone(line)
		}
		return line, err

	case KindTextarea:
		line, err := t.readLine()
		if err == nil && line != BackCommand {
			err = s.SetAnswer(q.Field, line)
		}
		return line, err

	case KindTerms:
		t.printf("¿Aceptas? (s/n)\n")
		line, err := t.readLine()
		if err == nil && line != BackCommand {
			s.SetAcceptedTerms(isYes(line))
		}
		return line, err
	}
	return t.readLine()
}

// echoChoice confirms an accepted option by its label.
func (t *Terminal) echoChoice(s *Session, q Question) {
	if len(q.Options) == 0 {
		return
	}
	record := s.Record()
	value, _ := record.Field(q.Field)
	if q.HasOther() && value == q.OtherValue {
		other, _ := record.Field(q.OtherField)
		t.printf("→ %s: %s\n", q.OptionLabel(value), other)
		return
	}
	t.printf("→ %s\n", q.OptionLabel(value))
}

func (t *Terminal) renderClosing(s *Session, q Question) {
	if s.Celebrating() {
		t.printf("🎉 ¡Gracias por completar la encuesta! 🎉\n")
	}
	if q.DiscountCode != "" {
		t.printf("Tu código de descuento: %s\n", q.DiscountCode)
	}
}

func (t *Terminal) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *Terminal) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.out, format, args...)
}

// optionValue accepts a 1-based option number, an option value or a label.
// Unknown input maps to "" so the step fails validation.
func (q Question) optionValue(input string) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].Value
	}
	for _, o := range q.Options {
		if strings.EqualFold(o.Value, input) || strings.EqualFold(o.Label, input) {
			return o.Value
		}
	}
	return ""
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}
