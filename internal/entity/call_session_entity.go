package entity

import (
	"time"

	"github.com/google/uuid"
)

type CallState string

const (
	StateCollectingName    CallState = "collecting_name"
	StateConfirmingPhone   CallState = "confirming_phone"
	StateCollectingAddress CallState = "collecting_address"
	StateConfirmingAddress CallState = "confirming_address"
	StateCollectingIssue   CallState = "collecting_issue"
	StateCollectingUrgency CallState = "collecting_urgency"
	StateOfferingTimes     CallState = "offering_times"
	StateConfirmingBooking CallState = "confirming_booking"
	StateBookingComplete   CallState = "booking_complete"
	StateEnded             CallState = "ended"
)

// stateOrder fixes the progression of a call. Transitions may only move
// to an equal-or-later index, except into StateEnded which is reachable
// from anywhere.
var stateOrder = map[CallState]int{
	StateCollectingName:    0,
	StateConfirmingPhone:   1,
	StateCollectingAddress: 2,
	StateConfirmingAddress: 3,
	StateCollectingIssue:   4,
	StateCollectingUrgency: 5,
	StateOfferingTimes:     6,
	StateConfirmingBooking: 7,
	StateBookingComplete:   8,
	StateEnded:             9,
}

// Valid reports whether s is a member of the fixed enumeration. Raw
// model output must never reach the stored state field without passing
// this check.
func (s CallState) Valid() bool {
	_, ok := stateOrder[s]
	return ok
}

// Index returns the position of s in the progression, or -1 for an
// unknown state.
func (s CallState) Index() int {
	if i, ok := stateOrder[s]; ok {
		return i
	}
	return -1
}

func (s CallState) Terminal() bool {
	return s == StateEnded
}

type Urgency string

const (
	UrgencyEmergency Urgency = "EMERGENCY"
	UrgencyUrgent    Urgency = "URGENT"
	UrgencyRoutine   Urgency = "ROUTINE"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyUrgent, UrgencyRoutine:
		return true
	}
	return false
}

// Slots holds the structured booking data collected over the call.
// Every field is a pointer: an unset slot serializes as null, never as
// a missing key.
type Slots struct {
	Name             *string `json:"name"`
	Phone            *string `json:"phone"`
	PhoneConfirmed   *bool   `json:"phone_confirmed"`
	Address          *string `json:"address"`
	AddressConfirmed *bool   `json:"address_confirmed"`
	Issue            *string `json:"issue"`
	Urgency          *string `json:"urgency"`
	PreferredDay     *string `json:"preferred_day"`
	PreferredTime    *string `json:"preferred_time"`
}

// Merge overwrites a slot only when the incoming value is non-nil.
// A null or absent value from the dialogue policy never clears data the
// caller already gave us, so a re-asked question answered vaguely keeps
// the earlier answer. This is the single merge point for the whole
// engine; handlers must not write slots directly.
func (s *Slots) Merge(updates Slots) {
	if updates.Name != nil {
		s.Name = updates.Name
	}
	if updates.Phone != nil {
		s.Phone = updates.Phone
	}
	if updates.PhoneConfirmed != nil {
		s.PhoneConfirmed = updates.PhoneConfirmed
	}
	if updates.Address != nil {
		s.Address = updates.Address
	}
	if updates.AddressConfirmed != nil {
		s.AddressConfirmed = updates.AddressConfirmed
	}
	if updates.Issue != nil {
		s.Issue = updates.Issue
	}
	if updates.Urgency != nil {
		s.Urgency = updates.Urgency
	}
	if updates.PreferredDay != nil {
		s.PreferredDay = updates.PreferredDay
	}
	if updates.PreferredTime != nil {
		s.PreferredTime = updates.PreferredTime
	}
}

// BookingReady reports whether the slot set is complete enough to fire
// the booking pipeline: name, confirmed phone, confirmed address, issue
// and a valid urgency.
func (s Slots) BookingReady() bool {
	return s.Name != nil && *s.Name != "" &&
		s.PhoneConfirmed != nil && *s.PhoneConfirmed &&
		s.Address != nil && *s.Address != "" &&
		s.AddressConfirmed != nil && *s.AddressConfirmed &&
		s.Issue != nil && *s.Issue != "" &&
		s.Urgency != nil && Urgency(*s.Urgency).Valid()
}

type TranscriptTurn struct {
	Role string `json:"role"` // "caller" or "agent"
	Text string `json:"text"`
}

const (
	TranscriptRoleCaller = "caller"
	TranscriptRoleAgent  = "agent"
)

// CallSession is the durable record of one phone call. CallID is the
// vendor-assigned stream id and the primary key; TenantID is set once at
// creation and never mutated.
type CallSession struct {
	CallID      string
	TenantID    string
	CallerPhone string
	State       CallState
	Slots       Slots
	Transcript  []TranscriptTurn
	Summary     string
	BookingID   *uuid.UUID
	StartedAt   time.Time
	EndedAt     *time.Time
}

// ConfirmedPhone is the number bookings and SMS must use: the phone slot
// when the caller supplied one, otherwise the caller ID.
func (cs *CallSession) ConfirmedPhone() string {
	if cs.Slots.Phone != nil && *cs.Slots.Phone != "" {
		return *cs.Slots.Phone
	}
	return cs.CallerPhone
}

// AppendTurn records one transcript turn. The transcript is append-only;
// truncation for prompt context happens at read time.
func (cs *CallSession) AppendTurn(role, text string) {
	cs.Transcript = append(cs.Transcript, TranscriptTurn{Role: role, Text: text})
}

// RecentTurns returns a read-time view of the last n transcript turns.
func (cs *CallSession) RecentTurns(n int) []TranscriptTurn {
	if n <= 0 || len(cs.Transcript) <= n {
		return cs.Transcript
	}
	return cs.Transcript[len(cs.Transcript)-n:]
}
