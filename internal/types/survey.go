package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ====== SENTINELS ======

const (
	CityOther  = "otra"
	StyleOther = "otro"
)

// TimestampLayout matches the ISO-8601 form browsers produce with toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ====== CORE TYPES ======

// AnswerRecord is one questionnaire pass. JSON names match the browser
// bundle that posts to the relay.
type AnswerRecord struct {
	Timestamp          string `json:"timestamp"`
	PurchasePreference string `json:"compraPreferencia"`
	City               string `json:"ciudad"`
	CityOther          string `json:"ciudadOtra,omitempty"`
	AgeRange           string `json:"edad"`
	WhatsAppNumber     string `json:"whatsappNumber"`
	Occupation         string `json:"ocupacion"`
	Style              string `json:"estilo"`
	StyleOther         string `json:"estiloOtro,omitempty"`
	ExperienceRating   string `json:"experiencia"`
	Recommends         string `json:"recomendacion"`
	Suggestion         string `json:"sugerencia"`
	AcceptedTerms      bool   `json:"aceptaTerminos"`
}

// UnmarshalJSON takes each known field from a JSON object whatever its type.
// Falsy values (null, false, 0, "") become "", other strings pass through and
// remaining values keep their JSON text. aceptaTerminos is true for any truthy
// value. Only a body that is not a JSON object is rejected.
func (r *AnswerRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = AnswerRecord{}
	for name, value := range raw {
		if name == "aceptaTerminos" {
			r.AcceptedTerms = truthy(value)
			continue
		}
		r.SetField(name, looseString(value))
	}
	return nil
}

func looseString(raw json.RawMessage) string {
	if !truthy(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func truthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return true
}

// Resolved returns a copy with "other" sentinels replaced by their free-text
// companions.
func (r AnswerRecord) Resolved() AnswerRecord {
	if r.City == CityOther {
		r.City = r.CityOther
	}
	if r.Style == StyleOther {
		r.Style = r.StyleOther
	}
	return r
}

// Field returns the string value stored under a JSON field name.
func (r *AnswerRecord) Field(name string) (string, bool) {
	switch name {
	case "timestamp":
		return r.Timestamp, true
	case "compraPreferencia":
		return r.PurchasePreference, true
	case "ciudad":
		return r.City, true
	case "ciudadOtra":
		return r.CityOther, true
	case "edad":
		return r.AgeRange, true
	case "whatsappNumber":
		return r.WhatsAppNumber, true
	case "ocupacion":
		return r.Occupation, true
	case "estilo":
		return r.Style, true
	case "estiloOtro":
		return r.StyleOther, true
	case "experiencia":
		return r.ExperienceRating, true
	case "recomendacion":
		return r.Recommends, true
	case "sugerencia":
		return r.Suggestion, true
	}
	return "", false
}

// SetField stores value under a JSON field name. Unknown names report false.
func (r *AnswerRecord) SetField(name, value string) bool {
	switch name {
	case "timestamp":
		r.Timestamp = value
	case "compraPreferencia":
		r.PurchasePreference = value
	case "ciudad":
		r.City = value
	case "ciudadOtra":
		r.CityOther = value
	case "edad":
		r.AgeRange = value
	case "whatsappNumber":
		r.WhatsAppNumber = value
	case "ocupacion":
		r.Occupation = value
	case "estilo":
		r.Style = value
	case "estiloOtro":
		r.StyleOther = value
	case "experiencia":
		r.ExperienceRating = value
	case "recomendacion":
		r.Recommends = value
	case "sugerencia":
		r.Suggestion = value
	default:
		return false
	}
	return true
}

// ====== REQUEST / RESPONSE TYPES ======

type SubmitResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ====== ERRORS ======

// ConfigError reports a sink secret that was not configured.
type ConfigError struct {
	Name string
}

func (e *ConfigError) Error() string {
	return "Missing " + e.Name
}

// SinkError wraps a failure while authenticating to or appending to the sheet.
type SinkError struct {
	Op  string
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
