// Package oracle wraps the language-model calls the dialogue engine
// depends on: emergency detection, intent extraction, severity grading and
// summary generation. Every operation may fail; the engine supplies the
// documented fallback so a model outage never surfaces to the patient.
package oracle

import (
	"context"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
)

// IntentResult is the oracle's answer to an intent classification request.
// Intent is reported as-is; coercing unknown labels to OutOfScope is the
// engine's job.
type IntentResult struct {
	Intent   dialog.Intent   `json:"intent"`
	Entities dialog.Entities `json:"entities"`
	Response string          `json:"response"`
}

// PatientRecord is the input to summary generation: everything gathered
// during intake and the questionnaire.
type PatientRecord struct {
	User     dialog.UserInfo `json:"user"`
	Entities dialog.Entities `json:"entities"`
	Answers  map[string]int  `json:"answers"`
}

// Oracle is the classification dependency of the dialogue engine.
type Oracle interface {
	// EmergencyCheck reports whether the text describes a medical
	// emergency. Fallback on error: false.
	EmergencyCheck(ctx context.Context, text string) (bool, error)

	// ClassifyIntent maps free text to an intent plus extracted entities.
	// Fallback on error: triage keyword scan.
	ClassifyIntent(ctx context.Context, text string) (IntentResult, error)

	// ClassifySeverity maps a questionnaire answer to a digit 1..5.
	// Fallback on error or out-of-range output: 3.
	ClassifySeverity(ctx context.Context, text string) (int, error)

	// Summarize produces the free-text assessment shown after the
	// questionnaire. Fallback on error: a fixed canned summary.
	Summarize(ctx context.Context, record PatientRecord) (string, error)
}
