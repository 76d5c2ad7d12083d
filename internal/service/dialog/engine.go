// Package dialog implements the per-session dialogue engine: a fixed
// conversation flow that collects patient details, runs a short symptom
// questionnaire and walks the user through booking an appointment. All
// language understanding is delegated to the oracle; the engine owns the
// state machine and the parsing of button clicks and free text.
package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/orthovaidhya/vaidhya/backend/internal/analysis/triage"
	"github.com/orthovaidhya/vaidhya/backend/internal/config"
	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/service/oracle"
)

const (
	welcomeText = "👋 Hi, I am Doctor's Assistant for a OrthoVaidhya Clinic suggest's consultant. What is your name?"

	emergencyText = "🚨 This looks like an emergency. Please call your local emergency number immediately!"

	outOfScopeText = "I'm a medical assistant focused on health symptoms and appointments. Is there anything health-related I can help you with?"

	fallbackText = "Sorry — I didn't understand that. Could you rephrase?"
)

// Engine drives one conversation turn at a time. It holds no per-session
// state itself; the caller passes the session in under the registry lock.
type Engine struct {
	oracle     oracle.Oracle
	loc        *time.Location
	paymentURL string
	log        *zap.Logger

	now func() time.Time // override in tests
}

// NewEngine builds the engine. A nil oracle is allowed and makes every
// classification run its offline fallback.
func NewEngine(o oracle.Oracle, cfg config.DialogConfig, logger *zap.Logger) (*Engine, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load booking timezone %q: %w", cfg.Timezone, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		oracle:     o,
		loc:        loc,
		paymentURL: cfg.PaymentURL,
		log:        logger,
		now:        time.Now,
	}, nil
}

// Handle processes one inbound message and returns the bot turns to send,
// in order. It mutates the session; the caller must hold the session lock
// and must not invoke Handle concurrently for the same session.
func (e *Engine) Handle(ctx context.Context, s *dialog.Session, input string) []dialog.Reply {
	text := strings.TrimSpace(input)

	// The emergency guard outranks every phase.
	if text != "" && e.checkEmergency(ctx, text) {
		e.log.Info("emergency detected", zap.String("session", s.ID))
		s.Reset(true)
		return []dialog.Reply{dialog.Text(emergencyText)}
	}

	var replies []dialog.Reply
	if !s.Greeted {
		s.Greeted = true
		replies = append(replies, dialog.Text(welcomeText))
		if text == "" {
			return replies
		}
	}

	switch s.Phase {
	case dialog.PhaseBookingSlot:
		return append(replies, e.handleBookingSlot(s, text)...)
	case dialog.PhaseBookingDate:
		return append(replies, e.handleBookingDate(s, text)...)
	case dialog.PhasePostSummary:
		return append(replies, e.handlePostSummary(s, text)...)
	case dialog.PhaseCollectName:
		return append(replies, e.collectName(s, text)...)
	case dialog.PhaseCollectAge:
		return append(replies, e.collectAge(s, text)...)
	case dialog.PhaseIntentDispatch:
		return append(replies, e.dispatchIntent(ctx, s, text)...)
	case dialog.PhaseQuestionnaire:
		return append(replies, e.handleQuestionnaire(ctx, s, text)...)
	default:
		return append(replies, dialog.Text(fallbackText))
	}
}

// checkEmergency asks the oracle for a verdict; failures count as
// non-emergencies so a model outage never blocks the conversation.
func (e *Engine) checkEmergency(ctx context.Context, text string) bool {
	if e.oracle == nil {
		return false
	}
	emergency, err := e.oracle.EmergencyCheck(ctx, text)
	if err != nil {
		e.log.Warn("emergency check failed, assuming non-emergency", zap.Error(err))
		return false
	}
	return emergency
}

// classifyIntent delegates to the oracle and falls back to the keyword
// scan on failure.
func (e *Engine) classifyIntent(ctx context.Context, text string) oracle.IntentResult {
	if e.oracle != nil {
		result, err := e.oracle.ClassifyIntent(ctx, text)
		if err == nil {
			return result
		}
		e.log.Warn("intent classification failed, using keyword fallback", zap.Error(err))
	}

	intent, entities := triage.Classify(text)
	return oracle.IntentResult{Intent: intent, Entities: entities}
}

// classifySeverity maps a questionnaire answer to a digit 1..5. A literal
// leading digit short-circuits the oracle call entirely; everything else
// goes to the model and degrades to 3 on any failure.
func (e *Engine) classifySeverity(ctx context.Context, text string) int {
	if digit, ok := literalDigit(text); ok {
		return digit
	}

	if e.oracle == nil {
		return 3
	}
	digit, err := e.oracle.ClassifySeverity(ctx, text)
	if err != nil || digit < 1 || digit > 5 {
		if err != nil {
			e.log.Warn("severity classification failed, defaulting to 3", zap.Error(err))
		}
		return 3
	}
	return digit
}

// summarize asks the oracle for the assessment text, degrading to the
// canned summary when the model is unavailable.
func (e *Engine) summarize(ctx context.Context, record oracle.PatientRecord) string {
	if e.oracle == nil {
		return oracle.FallbackSummary
	}
	summary, err := e.oracle.Summarize(ctx, record)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			e.log.Warn("summary generation failed, using canned summary", zap.Error(err))
		}
		return oracle.FallbackSummary
	}
	return summary
}

// literalDigit reports whether the first whitespace-delimited token (with
// a trailing dot stripped) is an integer in [1,5].
func literalDigit(text string) (int, bool) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return 0, false
	}

	token := strings.TrimSuffix(fields[0], ".")
	if token == "" {
		return 0, false
	}
	digit := 0
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
		digit = digit*10 + int(r-'0')
		if digit > 5 {
			return 0, false
		}
	}
	if digit < 1 {
		return 0, false
	}
	return digit, true
}
