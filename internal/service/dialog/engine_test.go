package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/orthovaidhya/vaidhya/backend/internal/config"
	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
	"github.com/orthovaidhya/vaidhya/backend/internal/service/oracle"
)

// fakeOracle returns scripted values so engine tests run without a model.
type fakeOracle struct {
	emergency    bool
	emergencyErr error

	intent    oracle.IntentResult
	intentErr error

	severity      int
	severityErr   error
	severityCalls int

	summary     string
	summaryErr  error
	lastRecord  oracle.PatientRecord
	summaryRuns int
}

func (f *fakeOracle) EmergencyCheck(_ context.Context, _ string) (bool, error) {
	return f.emergency, f.emergencyErr
}

func (f *fakeOracle) ClassifyIntent(_ context.Context, _ string) (oracle.IntentResult, error) {
	return f.intent, f.intentErr
}

func (f *fakeOracle) ClassifySeverity(_ context.Context, _ string) (int, error) {
	f.severityCalls++
	return f.severity, f.severityErr
}

func (f *fakeOracle) Summarize(_ context.Context, record oracle.PatientRecord) (string, error) {
	f.summaryRuns++
	f.lastRecord = record
	return f.summary, f.summaryErr
}

func newTestEngine(t *testing.T, o oracle.Oracle) *Engine {
	t.Helper()
	e, err := NewEngine(o, config.DialogConfig{
		Timezone:   "Asia/Kolkata",
		PaymentURL: "https://your-booking-url.com",
	}, nil)
	if err != nil {
		t.Fatalf("NewEngine err: %v", err)
	}
	return e
}

// seedIntake walks a fresh session through the welcome, name and age turns.
func seedIntake(t *testing.T, e *Engine, s *dialog.Session) {
	t.Helper()
	ctx := context.Background()
	e.Handle(ctx, s, "my name is Asha Rao")
	e.Handle(ctx, s, "I'm 42 years old")
	if s.Phase != dialog.PhaseIntentDispatch {
		t.Fatalf("expected intent dispatch after intake, got %s", s.Phase)
	}
}

func TestWelcomeThenNameCapture(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")

	replies := e.Handle(context.Background(), s, "my name is Asha Rao")
	if len(replies) != 2 {
		t.Fatalf("expected welcome + name ack, got %d replies", len(replies))
	}
	if !strings.Contains(replies[0].Text, "What is your name?") {
		t.Fatalf("missing welcome text: %q", replies[0].Text)
	}
	if s.UserInfo.Name != "Asha Rao" {
		t.Fatalf("expected name from pattern, got %q", s.UserInfo.Name)
	}
	if s.Phase != dialog.PhaseCollectAge {
		t.Fatalf("expected collect_age, got %s", s.Phase)
	}
}

func TestEmptyFirstMessageOnlyGreets(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")

	replies := e.Handle(context.Background(), s, "   ")
	if len(replies) != 1 {
		t.Fatalf("expected only the welcome, got %d replies", len(replies))
	}
	if s.UserInfo.Name != "" {
		t.Fatalf("blank input must not become the name, got %q", s.UserInfo.Name)
	}
}

func TestNameWithoutPatternUsesWholeInput(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")

	e.Handle(context.Background(), s, "Asha")
	if s.UserInfo.Name != "Asha" {
		t.Fatalf("expected raw input as name, got %q", s.UserInfo.Name)
	}
}

func TestAgeExtractsFirstDigitRun(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")

	e.Handle(context.Background(), s, "Asha")
	replies := e.Handle(context.Background(), s, "I am 42, nearly 43")
	if s.UserInfo.Age != "42" {
		t.Fatalf("expected age 42, got %q", s.UserInfo.Age)
	}
	if !strings.Contains(replies[0].Text, "noted your age as 42") {
		t.Fatalf("missing age ack: %q", replies[0].Text)
	}
}

// Scenario A: a symptom report produces two lead-in lines and question 1
// with five numbered choices.
func TestSymptomIntentStartsQuestionnaire(t *testing.T) {
	o := &fakeOracle{intent: oracle.IntentResult{
		Intent:   dialog.IntentSymptoms,
		Entities: dialog.Entities{Symptom: "back pain"},
	}}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	replies := e.Handle(context.Background(), s, "I have back pain")
	if len(replies) != 3 {
		t.Fatalf("expected 2 lead-ins + question, got %d replies", len(replies))
	}
	question := replies[2]
	if !strings.Contains(question.Text, "Open a tight or new jar") {
		t.Fatalf("expected question 1, got %q", question.Text)
	}
	if len(question.Buttons) != 5 {
		t.Fatalf("expected 5 buttons, got %d", len(question.Buttons))
	}
	if s.Phase != dialog.PhaseQuestionnaire {
		t.Fatalf("expected questionnaire phase, got %s", s.Phase)
	}
	if s.Entities.Symptom != "back pain" {
		t.Fatalf("entities not stored: %+v", s.Entities)
	}
}

// Scenario B: a bare digit answer never reaches the oracle.
func TestLiteralDigitSkipsOracle(t *testing.T) {
	o := &fakeOracle{severityErr: errors.New("must not be called")}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)
	s.Intent = dialog.IntentSymptoms
	s.Phase = dialog.PhaseQuestionnaire

	e.Handle(context.Background(), s, "3")
	if o.severityCalls != 0 {
		t.Fatalf("oracle called %d times for a literal digit", o.severityCalls)
	}
	if got := s.Answers["Open a tight or new jar"]; got != 3 {
		t.Fatalf("expected recorded answer 3, got %d", got)
	}
}

// Scenario C: the emergency guard fires in any phase and hard-resets.
func TestEmergencyOverridesAnyPhase(t *testing.T) {
	o := &fakeOracle{emergency: true}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	s.Greeted = true
	s.UserInfo = dialog.UserInfo{Name: "Asha", Age: "42"}
	s.Intent = dialog.IntentSymptoms
	s.Phase = dialog.PhaseQuestionnaire
	s.QuestionIndex = 3

	replies := e.Handle(context.Background(), s, "I can't breathe")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "emergency") {
		t.Fatalf("expected single emergency reply, got %+v", replies)
	}
	if s.UserInfo.Name != "" || s.Intent != dialog.IntentNone || s.QuestionIndex != 0 {
		t.Fatalf("expected hard reset, got %+v", s)
	}
	if s.Phase != dialog.PhaseCollectName {
		t.Fatalf("expected collect_name after reset, got %s", s.Phase)
	}
}

// Scenario E: out-of-scope input leaves the intent unset, so the next
// message is classified fresh.
func TestOutOfScopeLeavesIntentUnset(t *testing.T) {
	o := &fakeOracle{intent: oracle.IntentResult{Intent: dialog.IntentOutOfScope}}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	replies := e.Handle(context.Background(), s, "who won the cricket match")
	if s.Intent != dialog.IntentNone {
		t.Fatalf("out-of-scope must not set intent, got %s", s.Intent)
	}
	if len(replies) != 1 || len(replies[0].Buttons) != 2 {
		t.Fatalf("expected redirect with two quick replies, got %+v", replies)
	}

	o.intent = oracle.IntentResult{Intent: dialog.IntentSymptoms}
	e.Handle(context.Background(), s, "my wrist hurts")
	if s.Intent != dialog.IntentSymptoms {
		t.Fatalf("expected fresh classification, got %s", s.Intent)
	}
}

func TestUnknownIntentCoercedToOutOfScope(t *testing.T) {
	o := &fakeOracle{intent: oracle.IntentResult{Intent: dialog.Intent("OrderPizza")}}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	replies := e.Handle(context.Background(), s, "one margherita please")
	if s.Intent != dialog.IntentNone {
		t.Fatalf("unknown intent must not be stored, got %s", s.Intent)
	}
	if !strings.Contains(replies[0].Text, "health-related") {
		t.Fatalf("expected scope redirect, got %q", replies[0].Text)
	}
}

func TestIntentOracleFailureFallsBackToKeywords(t *testing.T) {
	o := &fakeOracle{intentErr: errors.New("model down")}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	e.Handle(context.Background(), s, "I have chest pain")
	if s.Intent != dialog.IntentSymptoms {
		t.Fatalf("keyword fallback should classify symptoms, got %s", s.Intent)
	}
	if s.Phase != dialog.PhaseQuestionnaire {
		t.Fatalf("expected questionnaire, got %s", s.Phase)
	}
}

func TestGreetingClearsIntent(t *testing.T) {
	o := &fakeOracle{intent: oracle.IntentResult{
		Intent:   dialog.IntentGreeting,
		Response: "Hello! How can I help you today?",
	}}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	replies := e.Handle(context.Background(), s, "good morning")
	if len(replies) != 1 || replies[0].Text != "Hello! How can I help you today?" {
		t.Fatalf("expected crafted greeting reply, got %+v", replies)
	}
	if s.Intent != dialog.IntentNone {
		t.Fatalf("greeting must not leave intent set, got %s", s.Intent)
	}
	if s.Phase != dialog.PhaseIntentDispatch {
		t.Fatalf("expected to stay in intent dispatch, got %s", s.Phase)
	}
}

func TestGoodbyeHardResets(t *testing.T) {
	o := &fakeOracle{intent: oracle.IntentResult{Intent: dialog.IntentGoodbye}}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)

	replies := e.Handle(context.Background(), s, "bye, thanks")
	if !strings.Contains(replies[len(replies)-1].Text, "Take care") {
		t.Fatalf("expected farewell, got %+v", replies)
	}
	if s.UserInfo.Name != "" || s.Phase != dialog.PhaseCollectName {
		t.Fatalf("expected hard reset after goodbye, got %+v", s)
	}
}

func TestQuestionnaireCompletesAfterFiveAnswers(t *testing.T) {
	o := &fakeOracle{
		intent:  oracle.IntentResult{Intent: dialog.IntentSymptoms},
		summary: "scripted summary",
	}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)
	e.Handle(context.Background(), s, "my hand hurts")

	var last []dialog.Reply
	for _, answer := range []string{"1", "2", "3", "4", "5"} {
		last = e.Handle(context.Background(), s, answer)
	}

	if s.QuestionIndex != 5 {
		t.Fatalf("expected question index 5, got %d", s.QuestionIndex)
	}
	if o.summaryRuns != 1 {
		t.Fatalf("expected exactly one summary, got %d", o.summaryRuns)
	}
	if len(o.lastRecord.Answers) != 5 {
		t.Fatalf("summary record should hold 5 answers, got %d", len(o.lastRecord.Answers))
	}
	if len(last) != 3 {
		t.Fatalf("expected thanks + summary + offer, got %d replies", len(last))
	}
	if !strings.Contains(last[1].Text, "scripted summary") {
		t.Fatalf("summary text missing: %q", last[1].Text)
	}
	// overall = max(answers) = 5
	if !strings.Contains(last[2].Text, "**Unable**") ||
		!strings.Contains(last[2].Text, "Urgent Medical Attention") {
		t.Fatalf("unexpected outcome text: %q", last[2].Text)
	}
	if s.Phase != dialog.PhasePostSummary {
		t.Fatalf("expected post-summary phase, got %s", s.Phase)
	}
}

func TestSeverityOutcomeTable(t *testing.T) {
	tests := []struct {
		overall    int
		label      string
		consultant string
	}{
		{1, "NoDifficulty", "Self-care / Advice"},
		{2, "Mild", "Physiotherapist / Occupational Therapist"},
		{3, "Moderate", "Occupational Therapist (consider specialist referral)"},
		{4, "Severe", "Surgeon + Occupational Therapist"},
		{5, "Unable", "Urgent Medical Attention"},
	}

	for _, tt := range tests {
		o := &fakeOracle{summary: "s"}
		e := newTestEngine(t, o)
		s := dialog.NewSession("s1")
		s.UserInfo = dialog.UserInfo{Name: "Asha", Age: "42"}
		for i, q := range questions {
			digit := 1
			if i == 0 {
				digit = tt.overall
			}
			s.Answers[q] = digit
		}

		replies := e.completeAssessment(context.Background(), s)
		post := replies[len(replies)-1].Text
		if !strings.Contains(post, "**"+tt.label+"**") {
			t.Errorf("overall %d: label %q missing in %q", tt.overall, tt.label, post)
		}
		if !strings.Contains(post, tt.consultant) {
			t.Errorf("overall %d: consultant %q missing in %q", tt.overall, tt.consultant, post)
		}
	}
}

func TestSeverityOracleFailureDefaultsToThree(t *testing.T) {
	o := &fakeOracle{severityErr: errors.New("model down")}
	e := newTestEngine(t, o)
	s := dialog.NewSession("s1")
	seedIntake(t, e, s)
	s.Intent = dialog.IntentSymptoms
	s.Phase = dialog.PhaseQuestionnaire

	e.Handle(context.Background(), s, "I really struggle with jars")
	if got := s.Answers["Open a tight or new jar"]; got != 3 {
		t.Fatalf("expected fallback digit 3, got %d", got)
	}
}

func TestPostSummaryRepromptsUntilBooking(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")
	s.Greeted = true
	s.UserInfo = dialog.UserInfo{Name: "Asha", Age: "42"}
	s.Phase = dialog.PhasePostSummary

	replies := e.Handle(context.Background(), s, "what does that mean?")
	if s.Phase != dialog.PhasePostSummary {
		t.Fatalf("expected to stay in post-summary, got %s", s.Phase)
	}
	if len(replies) != 1 || len(replies[0].Buttons) != 1 {
		t.Fatalf("expected single Book Appointment affordance, got %+v", replies)
	}

	e.Handle(context.Background(), s, "yes please")
	if s.Phase != dialog.PhaseBookingDate {
		t.Fatalf("expected booking date phase, got %s", s.Phase)
	}
	if len(s.Booking.AvailableDates) != 3 {
		t.Fatalf("expected 3 offered dates, got %d", len(s.Booking.AvailableDates))
	}
}

func TestHardResetClearsEverything(t *testing.T) {
	s := dialog.NewSession("s1")
	s.Greeted = true
	s.UserInfo = dialog.UserInfo{Name: "Asha", Age: "42"}
	s.Intent = dialog.IntentSymptoms
	s.Entities = dialog.Entities{Symptom: "back pain"}
	s.QuestionIndex = 4
	s.Answers["Write"] = 2
	s.Booking.SelectedDate = "2025-09-30"
	s.Phase = dialog.PhaseBookingSlot

	s.Reset(true)

	if s.UserInfo != (dialog.UserInfo{}) {
		t.Fatalf("user info not cleared: %+v", s.UserInfo)
	}
	if s.Intent != dialog.IntentNone || s.QuestionIndex != 0 || len(s.Answers) != 0 {
		t.Fatalf("conversation state not cleared: %+v", s)
	}
	if s.Booking.SelectedDate != "" || s.Phase != dialog.PhaseCollectName || s.Greeted {
		t.Fatalf("expected pristine session, got %+v", s)
	}
}

func TestUnhandledStateFallback(t *testing.T) {
	e := newTestEngine(t, &fakeOracle{})
	s := dialog.NewSession("s1")
	s.Greeted = true
	s.Phase = dialog.Phase("bogus")

	replies := e.Handle(context.Background(), s, "hello?")
	if len(replies) != 1 || !strings.Contains(replies[0].Text, "didn't understand") {
		t.Fatalf("expected fallback reply, got %+v", replies)
	}
}
