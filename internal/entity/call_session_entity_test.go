package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestSlotsMergeMonotonic(t *testing.T) {
	s := Slots{Issue: strPtr("AC broken"), Name: strPtr("Maria Lopez")}

	// A nil incoming value never clears collected data.
	s.Merge(Slots{Issue: nil, Name: nil})
	assert.Equal(t, "AC broken", *s.Issue)
	assert.Equal(t, "Maria Lopez", *s.Name)

	// A non-nil incoming value overwrites.
	s.Merge(Slots{Issue: strPtr("no cooling at all")})
	assert.Equal(t, "no cooling at all", *s.Issue)

	// Merging an empty update struct is a no-op.
	before := s
	s.Merge(Slots{})
	assert.Equal(t, before, s)
}

func TestSlotsMergeSetsNewFields(t *testing.T) {
	var s Slots
	s.Merge(Slots{
		Phone:          strPtr("+12155551234"),
		PhoneConfirmed: boolPtr(true),
	})
	assert.Equal(t, "+12155551234", *s.Phone)
	assert.True(t, *s.PhoneConfirmed)
	assert.Nil(t, s.Address)
}

func TestSlotsBookingReady(t *testing.T) {
	full := Slots{
		Name:             strPtr("Maria Lopez"),
		Phone:            strPtr("+12155551234"),
		PhoneConfirmed:   boolPtr(true),
		Address:          strPtr("123 Main St"),
		AddressConfirmed: boolPtr(true),
		Issue:            strPtr("AC broken"),
		Urgency:          strPtr("EMERGENCY"),
	}
	assert.True(t, full.BookingReady())

	noUrgency := full
	noUrgency.Urgency = nil
	assert.False(t, noUrgency.BookingReady())

	badUrgency := full
	badUrgency.Urgency = strPtr("WHENEVER")
	assert.False(t, badUrgency.BookingReady())

	unconfirmed := full
	unconfirmed.PhoneConfirmed = boolPtr(false)
	assert.False(t, unconfirmed.BookingReady())
}

func TestCallStateOrder(t *testing.T) {
	assert.True(t, StateCollectingName.Valid())
	assert.True(t, StateEnded.Valid())
	assert.False(t, CallState("talking_nonsense").Valid())
	assert.Equal(t, -1, CallState("talking_nonsense").Index())
	assert.Less(t, StateCollectingName.Index(), StateConfirmingPhone.Index())
	assert.Less(t, StateConfirmingBooking.Index(), StateBookingComplete.Index())
	assert.True(t, StateEnded.Terminal())
	assert.False(t, StateBookingComplete.Terminal())
}

func TestConfirmedPhonePrefersSlot(t *testing.T) {
	cs := CallSession{CallerPhone: "+12155551234"}
	assert.Equal(t, "+12155551234", cs.ConfirmedPhone())

	cs.Slots.Phone = strPtr("+12158050594")
	assert.Equal(t, "+12158050594", cs.ConfirmedPhone())
}

func TestRecentTurnsView(t *testing.T) {
	cs := CallSession{}
	for i := 0; i < 5; i++ {
		cs.AppendTurn(TranscriptRoleCaller, "turn")
	}
	assert.Len(t, cs.RecentTurns(3), 3)
	assert.Len(t, cs.RecentTurns(10), 5)
	assert.Len(t, cs.RecentTurns(0), 5)
	// The underlying transcript is untouched by the read-time view.
	assert.Len(t, cs.Transcript, 5)
}
