package questionnaire

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/chivis/survey-relay/internal/types"
	"gopkg.in/yaml.v3"
)

type Kind string

const (
	KindWelcome     Kind = "welcome"
	KindSelect      Kind = "select"
	KindSelectOther Kind = "select-other"
	KindPhone       Kind = "phone"
	KindTextarea    Kind = "textarea"
	KindTerms       Kind = "terms"
	KindThanks      Kind = "thanks"
)

type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// Question is one step of the questionnaire.
type Question struct {
	ID          string   `yaml:"id"`
	Kind        Kind     `yaml:"kind"`
	Field       string   `yaml:"field,omitempty"`
	Prompt      string   `yaml:"prompt,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Options     []Option `yaml:"options,omitempty"`

	// OtherValue is the option that asks for free text stored in OtherField.
	OtherValue string `yaml:"other_value,omitempty"`
	OtherField string `yaml:"other_field,omitempty"`

	DiscountCode string `yaml:"discount_code,omitempty"`
}

// HasOther reports whether the question offers a free-text variant.
func (q Question) HasOther() bool {
	return q.OtherValue != "" && q.OtherField != ""
}

// OptionLabel returns the label for value, or value itself if unknown.
func (q Question) OptionLabel(value string) string {
	for _, o := range q.Options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

//go:embed questions.yaml
var defaultQuestions []byte

// DefaultQuestions returns the built-in questionnaire.
func DefaultQuestions() ([]Question, error) {
	return ParseQuestions(defaultQuestions)
}

// LoadQuestions reads a questionnaire from a YAML file.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return ParseQuestions(data)
}

func ParseQuestions(data []byte) ([]Question, error) {
	var questions []Question
	if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ValidateQuestions checks that the table can drive a session: at least two
// steps, unique ids, known kinds, and answer fields the record can hold.
func ValidateQuestions(questions []Question) error {
	if len(questions) < 2 {
		return fmt.Errorf("questionnaire needs at least 2 steps, got %d", len(questions))
	}

	var blank types.AnswerRecord
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("question at index %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true

		switch q.Kind {
		case KindWelcome, KindThanks, KindTerms:
		case KindSelect, KindSelectOther:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %q has no options", q.ID)
			}
			if _, ok := blank.Field(q.Field); !ok {
				return fmt.Errorf("question %q writes unknown field %q", q.ID, q.Field)
			}
			if q.OtherField != "" {
				if _, ok := blank.Field(q.OtherField); !ok {
					return fmt.Errorf("question %q writes unknown field %q", q.ID, q.OtherField)
				}
			}
		case KindPhone, KindTextarea:
			if _, ok := blank.Field(q.Field); !ok {
				return fmt.Errorf("question %q writes unknown field %q", q.ID, q.Field)
			}
		default:
			return fmt.Errorf("question %q has unknown kind %q", q.ID, q.Kind)
		}
	}
	return nil
}
