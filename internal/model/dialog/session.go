package dialog

import "time"

// Phase is the single dialogue state that decides how the next inbound
// message is interpreted. Exactly one phase is active per session, which
// replaces the overlapping awaiting_* booleans of earlier prototypes.
type Phase string

const (
	PhaseCollectName      Phase = "collect_name"
	PhaseCollectAge       Phase = "collect_age"
	PhaseIntentDispatch   Phase = "intent_dispatch"
	PhaseQuestionnaire    Phase = "questionnaire"
	PhasePostSummary      Phase = "awaiting_post_summary"
	PhaseBookingDate      Phase = "awaiting_booking_date"
	PhaseBookingSlot      Phase = "awaiting_booking_slot"
)

// Intent is one of the fixed set of conversation goals the clinic bot
// understands. Anything else is coerced to IntentOutOfScope.
type Intent string

const (
	IntentNone       Intent = ""
	IntentGreeting   Intent = "Greeting"
	IntentSymptoms   Intent = "CheckSymptoms"
	IntentBook       Intent = "BookAppointment"
	IntentCancel     Intent = "CancelAppointment"
	IntentReschedule Intent = "RescheduleAppointment"
	IntentGoodbye    Intent = "Goodbye"
	IntentOutOfScope Intent = "OutOfScope"
)

// Known reports whether the intent is one the engine dispatches on.
func (i Intent) Known() bool {
	switch i {
	case IntentGreeting, IntentSymptoms, IntentBook, IntentCancel, IntentReschedule, IntentGoodbye:
		return true
	}
	return false
}

// Entities carries the slots extracted by the NLU oracle alongside the
// intent. All fields are optional; empty means not mentioned.
type Entities struct {
	Symptom      string `json:"symptom"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	RelativeDate string `json:"relative_date"`
}

// UserInfo is the administrative data captured during intake. It survives
// soft resets and is wiped only by a hard reset.
type UserInfo struct {
	Name string
	Age  string
}

// DateOption is one offered appointment date.
type DateOption struct {
	Label   string // e.g. "Tue, Sep 29, 2025"
	ISODate string // e.g. "2025-09-29"
}

// SlotOption is one offered appointment time.
type SlotOption struct {
	Label string // e.g. "01:00 PM"
	Time  string // e.g. "13:00"
}

// Booking holds the in-flight appointment selection. Offered dates and
// slots are recomputed every time booking starts; SelectedDate is only
// meaningful while the session sits in PhaseBookingSlot.
type Booking struct {
	AvailableDates []DateOption
	AvailableSlots []SlotOption
	SelectedDate   string
	ConfirmedDate  string
	ConfirmedTime  string
}

// Session is the full conversational state for one session key. It is
// mutated only by the dialogue engine while the registry holds the
// per-session lock.
type Session struct {
	ID            string
	Phase         Phase
	Greeted       bool
	UserInfo      UserInfo
	Intent        Intent
	Entities      Entities
	QuestionIndex int
	Answers       map[string]int
	Booking       Booking
	CreatedAt     time.Time
}

// NewSession returns a fresh session positioned at the start of intake.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Phase:     PhaseCollectName,
		Answers:   make(map[string]int),
		CreatedAt: time.Now().UTC(),
	}
}

// Reset clears the conversational state. A hard reset also forgets the
// captured name and age, returning the session to the initial greeting.
func (s *Session) Reset(hard bool) {
	s.Intent = IntentNone
	s.Entities = Entities{}
	s.QuestionIndex = 0
	s.Answers = make(map[string]int)
	s.Booking = Booking{}
	if hard {
		s.UserInfo = UserInfo{}
		s.Greeted = false
		s.Phase = PhaseCollectName
		return
	}
	s.Phase = s.resumePhase()
}

// resumePhase picks the earliest intake phase still missing data.
func (s *Session) resumePhase() Phase {
	switch {
	case s.UserInfo.Name == "":
		return PhaseCollectName
	case s.UserInfo.Age == "":
		return PhaseCollectAge
	default:
		return PhaseIntentDispatch
	}
}
