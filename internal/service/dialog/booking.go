package dialog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/orthovaidhya/vaidhya/backend/internal/model/dialog"
)

var (
	datePayloadPattern = regexp.MustCompile(`^DATE:(\d{4}-\d{2}-\d{2})$`)
	slotPayloadPattern = regexp.MustCompile(`^BOOK_SLOT:(\d{4}-\d{2}-\d{2})\|(\d{2}:\d{2})$`)
	pickIndexPattern   = regexp.MustCompile(`^\s*[1-3]\s*$`)
	isoDatePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	clockTimePattern   = regexp.MustCompile(`\d{2}:\d{2}`)
)

// defaultSlots are the three bookable times of every clinic day. They are
// not checked against real availability.
var defaultSlots = []dialog.SlotOption{
	{Label: "11:00 AM", Time: "11:00"},
	{Label: "01:00 PM", Time: "13:00"},
	{Label: "03:00 PM", Time: "15:00"},
}

// nextThreeDates returns tomorrow and the two days after it, evaluated in
// the clinic timezone.
func (e *Engine) nextThreeDates() []dialog.DateOption {
	today := e.now().In(e.loc)
	dates := make([]dialog.DateOption, 0, 3)
	for i := 1; i <= 3; i++ {
		d := today.AddDate(0, 0, i)
		dates = append(dates, dialog.DateOption{
			Label:   d.Format("Mon, Jan 02, 2006"),
			ISODate: d.Format("2006-01-02"),
		})
	}
	return dates
}

// offerDates recomputes the three candidate dates and presents them. Any
// previous booking selection is discarded.
func (e *Engine) offerDates(s *dialog.Session) []dialog.Reply {
	dates := e.nextThreeDates()
	s.Booking = dialog.Booking{AvailableDates: dates}
	s.Phase = dialog.PhaseBookingDate

	lines := []string{"Please pick a date for your appointment (tap a button or type 1/2/3):"}
	buttons := make([]dialog.Button, 0, 3)
	for i, d := range dates {
		lines = append(lines, fmt.Sprintf("%d) %s — %s", i+1, d.Label, d.ISODate))
		v := strconv.Itoa(i + 1)
		buttons = append(buttons, dialog.Button{Label: v, Value: v})
	}

	return []dialog.Reply{{Text: strings.Join(lines, "\n"), Buttons: buttons}}
}

// handleBookingDate resolves the user's date pick: a DATE payload, a bare
// index against the offered dates, or any ISO date in free text.
func (e *Engine) handleBookingDate(s *dialog.Session, text string) []dialog.Reply {
	chosen := ""
	switch {
	case datePayloadPattern.MatchString(text):
		chosen = datePayloadPattern.FindStringSubmatch(text)[1]
	case pickIndexPattern.MatchString(text):
		idx, _ := strconv.Atoi(strings.TrimSpace(text))
		if idx >= 1 && idx <= len(s.Booking.AvailableDates) {
			chosen = s.Booking.AvailableDates[idx-1].ISODate
		}
	default:
		chosen = isoDatePattern.FindString(text)
	}

	if chosen == "" {
		return []dialog.Reply{{
			Text:    "Please tap one of the date buttons (1/2/3) or type the date in YYYY-MM-DD format.",
			Buttons: indexButtons(3),
		}}
	}

	return e.offerSlots(s, chosen)
}

// offerSlots presents the three time slots for the selected date.
func (e *Engine) offerSlots(s *dialog.Session, isoDate string) []dialog.Reply {
	s.Booking.AvailableSlots = defaultSlots
	s.Booking.SelectedDate = isoDate
	s.Phase = dialog.PhaseBookingSlot

	lines := []string{fmt.Sprintf("Select your preferred time for %s:", isoDate)}
	buttons := make([]dialog.Button, 0, 3)
	for i, slot := range defaultSlots {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, slot.Label))
		buttons = append(buttons, dialog.Button{
			Label: fmt.Sprintf("%d. %s", i+1, slot.Label),
			Value: strconv.Itoa(i + 1),
		})
	}

	return []dialog.Reply{{Text: strings.Join(lines, "\n"), Buttons: buttons}}
}

// handleBookingSlot resolves the time pick: a BOOK_SLOT payload, a bare
// index against the offered slots, or any HH:MM in free text. A valid pick
// confirms the booking and finalizes the turn.
func (e *Engine) handleBookingSlot(s *dialog.Session, text string) []dialog.Reply {
	chosenDate, chosenTime := "", ""
	switch {
	case slotPayloadPattern.MatchString(text):
		m := slotPayloadPattern.FindStringSubmatch(text)
		chosenDate, chosenTime = m[1], m[2]
	case pickIndexPattern.MatchString(text):
		idx, _ := strconv.Atoi(strings.TrimSpace(text))
		if idx >= 1 && idx <= len(s.Booking.AvailableSlots) {
			chosenTime = s.Booking.AvailableSlots[idx-1].Time
			chosenDate = s.Booking.SelectedDate
		}
	default:
		if t := clockTimePattern.FindString(text); t != "" {
			chosenTime = t
			chosenDate = s.Booking.SelectedDate
		}
	}

	if chosenDate == "" || chosenTime == "" {
		return []dialog.Reply{dialog.Text(
			"Please tap one of the time buttons (1/2/3) or type the time in HH:MM format.")}
	}

	s.Booking.ConfirmedDate = chosenDate
	s.Booking.ConfirmedTime = chosenTime
	s.Intent = dialog.IntentBook
	return e.finalizeIntent(s)
}

// finalizeIntent closes out the appointment-management intents and always
// ends with a hard reset.
func (e *Engine) finalizeIntent(s *dialog.Session) []dialog.Reply {
	var replies []dialog.Reply

	switch s.Intent {
	case dialog.IntentBook:
		date := s.Booking.ConfirmedDate
		clock := s.Booking.ConfirmedTime
		if date != "" && clock != "" {
			replies = append(replies,
				dialog.Text(fmt.Sprintf("📅 You've selected an appointment for %s at %s.",
					date, slotLabel(clock))),
				dialog.Text(fmt.Sprintf("Pay and confirm slot: [Click here](%s)", e.paymentURL)))
		} else {
			replies = append(replies, dialog.Text("📅 Please select an appointment time."))
		}
	case dialog.IntentCancel:
		replies = append(replies, dialog.Text("❌ Your appointment has been cancelled. Thank you!"))
	case dialog.IntentReschedule:
		replies = append(replies, dialog.Text("🔄 Your appointment has been rescheduled. Thank you!"))
	}

	s.Reset(true)
	return replies
}

// slotLabel translates a 24-hour slot time back to its human label.
func slotLabel(clock string) string {
	for _, slot := range defaultSlots {
		if slot.Time == clock {
			return slot.Label
		}
	}
	return clock
}

func indexButtons(n int) []dialog.Button {
	buttons := make([]dialog.Button, 0, n)
	for i := 1; i <= n; i++ {
		v := strconv.Itoa(i)
		buttons = append(buttons, dialog.Button{Label: v, Value: v})
	}
	return buttons
}
