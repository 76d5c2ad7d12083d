package dialog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
)

var (
	namePattern = regexp.MustCompile(`(?i)(?:my name is|i am|i'm)\s+(.+)`)
	agePattern  = regexp.MustCompile(`(\d{1,3})`)
)

// collectName captures the patient's name from the first free-text turn.
func (e *Engine) collectName(s *dialog.Session, text string) []dialog.Reply {
	name := text
	if m := namePattern.FindStringSubmatch(text); m != nil {
		name = strings.TrimSpace(m[1])
	}
	if name == "" {
		name = "Patient"
	}

	s.UserInfo.Name = name
	s.Phase = dialog.PhaseCollectAge

	return []dialog.Reply{dialog.Text(fmt.Sprintf(
		"😊 Nice to meet you, %s!\nNow, could you please tell me your age?", name))}
}

// collectAge captures the first 1-3 digit run as the age, falling back to
// the raw input.
func (e *Engine) collectAge(s *dialog.Session, text string) []dialog.Reply {
	age := text
	if m := agePattern.FindStringSubmatch(text); m != nil {
		age = m[1]
	}

	s.UserInfo.Age = age
	s.Phase = dialog.PhaseIntentDispatch

	return []dialog.Reply{dialog.Text(fmt.Sprintf(
		"✅ Thanks %s. I have noted your age as %s.\nNow, please describe your main symptom in a sentence.",
		s.UserInfo.Name, age))}
}

// dispatchIntent classifies a free-text message and routes the
// conversation. Out-of-scope input deliberately leaves the intent unset so
// the next message is classified from scratch.
func (e *Engine) dispatchIntent(ctx context.Context, s *dialog.Session, text string) []dialog.Reply {
	result := e.classifyIntent(ctx, text)

	intent := result.Intent
	if !intent.Known() {
		intent = dialog.IntentOutOfScope
	}
	e.log.Debug("intent classified",
		zap.String("session", s.ID),
		zap.String("intent", string(intent)))

	if intent == dialog.IntentOutOfScope {
		return []dialog.Reply{{
			Text: outOfScopeText,
			Buttons: []dialog.Button{
				{Label: "Check Symptoms", Value: "I have pain"},
				{Label: "Book Appointment", Value: "book appointment"},
			},
		}}
	}

	s.Intent = intent
	s.Entities = result.Entities

	// The oracle's crafted reply accompanies every intent except the
	// symptom flow, which has its own lead-in lines.
	var replies []dialog.Reply
	if intent != dialog.IntentSymptoms && result.Response != "" {
		replies = append(replies, dialog.Text(result.Response))
	}

	switch intent {
	case dialog.IntentSymptoms:
		s.Phase = dialog.PhaseQuestionnaire
		replies = append(replies,
			dialog.Text("Thanks for sharing. Let's go through a quick symptom assessment."),
			dialog.Text("🩺 Let's do a short assessment about your daily activities."))
		return append(replies, e.askQuestion(s))

	case dialog.IntentBook, dialog.IntentCancel, dialog.IntentReschedule:
		return append(replies, e.finalizeIntent(s)...)

	case dialog.IntentGoodbye:
		replies = append(replies, dialog.Text("👋 Take care and stay healthy!"))
		s.Reset(true)
		return replies

	default: // Greeting
		if len(replies) == 0 {
			replies = append(replies, dialog.Text("👋 Hello! How can I help you today?"))
		}
		// Greeting is not a destination: clear the intent again so the
		// next message is classified fresh instead of hitting the
		// unhandled-intent fallback.
		s.Intent = dialog.IntentNone
		return replies
	}
}
