package conversation

import (
	"fmt"
	"strings"

	"voice-intake-be/internal/entity"
)

// BuildSummary renders a short human-readable recap of a call for the
// session record, lead notes and office alerts. It is deterministic and
// never calls the model.
func BuildSummary(session *entity.CallSession) string {
	var b strings.Builder

	writeLine := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	writeLine("Caller", derefStr(session.Slots.Name))
	writeLine("Phone", session.ConfirmedPhone())
	writeLine("Address", derefStr(session.Slots.Address))
	writeLine("Issue", derefStr(session.Slots.Issue))
	writeLine("Urgency", derefStr(session.Slots.Urgency))

	if day := derefStr(session.Slots.PreferredDay); day != "" {
		pref := day
		if t := derefStr(session.Slots.PreferredTime); t != "" {
			pref += " " + t
		}
		writeLine("Preferred", pref)
	}

	if session.BookingID != nil {
		writeLine("Outcome", "booked, job "+session.BookingID.String())
	} else {
		writeLine("Outcome", "no booking")
	}

	return strings.TrimRight(b.String(), "\n")
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
