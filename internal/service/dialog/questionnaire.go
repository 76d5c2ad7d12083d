package dialog

import (
	"context"
	"fmt"
	"strings"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/service/oracle"
)

// The QuickDASH-style activity questionnaire. Question and option texts
// are fixed; transcripts and tests depend on them verbatim.
var questions = []string{
	"Open a tight or new jar",
	"Write",
	"Turn a key",
	"Prepare a meal",
	"Carry a shopping bag",
}

var options = []string{
	"1. No Difficulty",
	"2. Mild Difficulty",
	"3. Moderate Difficulty",
	"4. Severe Difficulty",
	"5. Unable To Do",
}

// severityLabels and consultants map the overall severity (the maximum
// answered digit) to the displayed outcome.
var severityLabels = map[int]string{
	1: "NoDifficulty",
	2: "Mild",
	3: "Moderate",
	4: "Severe",
	5: "Unable",
}

var consultants = map[int]string{
	1: "Self-care / Advice",
	2: "Physiotherapist / Occupational Therapist",
	3: "Occupational Therapist (consider specialist referral)",
	4: "Surgeon + Occupational Therapist",
	5: "Urgent Medical Attention",
}

// askQuestion renders the current question with its five numbered choices.
func (e *Engine) askQuestion(s *dialog.Session) dialog.Reply {
	question := fmt.Sprintf("**Question %d of %d:** %s",
		s.QuestionIndex+1, len(questions), questions[s.QuestionIndex])

	return dialog.Reply{
		Text: fmt.Sprintf("%s\n\n%s\n\n(Tap a number button or type 1-5)",
			question, strings.Join(options, "\n")),
		Buttons: indexButtons(5),
	}
}

// handleQuestionnaire records one answer and either asks the next question
// or closes the assessment.
func (e *Engine) handleQuestionnaire(ctx context.Context, s *dialog.Session, text string) []dialog.Reply {
	if s.QuestionIndex < len(questions) {
		digit := e.classifySeverity(ctx, text)
		s.Answers[questions[s.QuestionIndex]] = digit
	}
	s.QuestionIndex++

	if s.QuestionIndex < len(questions) {
		return []dialog.Reply{e.askQuestion(s)}
	}
	return e.completeAssessment(ctx, s)
}

// completeAssessment emits the summary, the severity outcome and the
// booking offer, then parks the session in the post-summary phase.
func (e *Engine) completeAssessment(ctx context.Context, s *dialog.Session) []dialog.Reply {
	if len(s.Answers) == 0 {
		return []dialog.Reply{dialog.Text("No answers recorded.")}
	}

	overall := 0
	for _, digit := range s.Answers {
		if digit > overall {
			overall = digit
		}
	}

	summary := e.summarize(ctx, oracle.PatientRecord{
		User:     s.UserInfo,
		Entities: s.Entities,
		Answers:  s.Answers,
	})

	post := fmt.Sprintf(
		"Overall level: **%s**.\nRecommended specialist: **%s**.\n\n"+
			"Would you like me to: Book an appointment\n(Tap the button below)",
		severityLabels[overall], consultants[overall])

	s.Phase = dialog.PhasePostSummary

	return []dialog.Reply{
		dialog.Text("✨ Thank you for completing the assessment!\n"),
		dialog.Text(fmt.Sprintf("📝 Summary & Recommendation:\n\n%s", summary)),
		{
			Text:    post,
			Buttons: []dialog.Button{{Label: "Book Appointment", Value: "book"}},
		},
	}
}

// handlePostSummary waits for the user to accept or decline the booking
// offer that follows the assessment.
func (e *Engine) handlePostSummary(s *dialog.Session, text string) []dialog.Reply {
	lc := strings.ToLower(text)
	for _, word := range []string{"yes", "book", "appointment"} {
		if strings.Contains(lc, word) {
			return e.offerDates(s)
		}
	}

	return []dialog.Reply{{
		Text:    "Please tap the 'Book Appointment' button or type 'book'.",
		Buttons: []dialog.Button{{Label: "Book Appointment", Value: "book"}},
	}}
}
