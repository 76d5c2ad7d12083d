package triage

import (
	"strings"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
)

// medicalKeywords mirrors the fallback list used when the NLU model is
// unreachable. Any hit classifies the whole utterance as a symptom report.
var medicalKeywords = []string{
	"pain", "hurt", "ache", "sick", "symptom", "headache", "backache",
	"chest", "stomach", "fever", "cough", "dizzy",
}

// Classify is the offline stand-in for the intent oracle: a keyword scan
// that routes anything medical-sounding into the symptom flow and
// everything else out of scope.
func Classify(text string) (dialog.Intent, dialog.Entities) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return dialog.IntentOutOfScope, dialog.Entities{}
	}

	for _, keyword := range medicalKeywords {
		if strings.Contains(normalized, keyword) {
			return dialog.IntentSymptoms, dialog.Entities{Symptom: text}
		}
	}

	return dialog.IntentOutOfScope, dialog.Entities{}
}
