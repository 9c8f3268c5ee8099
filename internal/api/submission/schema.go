package submission

import (
	"fmt"
	"time"

	"github.com/chivis/survey-relay/internal/types"
)

const (
	ColumnTimestamp    = "timestamp"
	ColumnConsent      = "aceptaTerminos"
	ColumnSubmissionID = "submissionId"

	ConsentYes = "Sí"
	ConsentNo  = "No"
)

var answerColumns = map[string]bool{
	"compraPreferencia": true,
	"ciudad":            true,
	"ciudadOtra":        true,
	"edad":              true,
	"whatsappNumber":    true,
	"ocupacion":         true,
	"estilo":            true,
	"estiloOtro":        true,
	"experiencia":       true,
	"recomendacion":     true,
	"sugerencia":        true,
}

// ValidateColumns rejects column lists naming fields the relay cannot fill.
func ValidateColumns(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("at least one sheet column must be configured")
	}
	for i, col := range columns {
		switch {
		case col == ColumnTimestamp, col == ColumnConsent, col == ColumnSubmissionID:
		case answerColumns[col]:
		default:
			return fmt.Errorf("unknown sheet column at index %d: %q", i, col)
		}
	}
	return nil
}

// RowInput carries the values the relay stamps itself.
type RowInput struct {
	Record       types.AnswerRecord
	ReceivedAt   time.Time
	SubmissionID string
}

// BuildRow maps a record into the configured column order. The timestamp
// column is always the relay's receipt time, never the client's.
func BuildRow(columns []string, in RowInput) ([]interface{}, error) {
	record := in.Record.Resolved()
	row := make([]interface{}, 0, len(columns))

	for i, col := range columns {
		switch col {
		case ColumnTimestamp:
			row = append(row, in.ReceivedAt.UTC().Format(types.TimestampLayout))
		case ColumnConsent:
			row = append(row, ConsentMarker(record.AcceptedTerms))
		case ColumnSubmissionID:
			row = append(row, in.SubmissionID)
		default:
			if !answerColumns[col] {
				return nil, fmt.Errorf("unknown sheet column at index %d: %q", i, col)
			}
			v, _ := record.Field(col)
			row = append(row, v)
		}
	}
	return row, nil
}

func ConsentMarker(accepted bool) string {
	if accepted {
		return ConsentYes
	}
	return ConsentNo
}
