package mapper

import (
	"encoding/json"

	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/model"

	"gorm.io/datatypes"
)

type CallMapper struct{}

func NewCallMapper() *CallMapper {
	return &CallMapper{}
}

func (m *CallMapper) CallSessionToModel(e *entity.CallSession) *model.CallSession {
	slots, _ := json.Marshal(e.Slots)
	transcript, _ := json.Marshal(e.Transcript)
	if e.Transcript == nil {
		transcript = []byte("[]")
	}

	return &model.CallSession{
		CallId:      e.CallID,
		TenantId:    e.TenantID,
		CallerPhone: e.CallerPhone,
		State:       string(e.State),
		Slots:       datatypes.JSON(slots),
		Transcript:  datatypes.JSON(transcript),
		Summary:     e.Summary,
		BookingId:   e.BookingID,
		StartedAt:   e.StartedAt,
		EndedAt:     e.EndedAt,
	}
}

func (m *CallMapper) CallSessionToEntity(mo *model.CallSession) *entity.CallSession {
	e := &entity.CallSession{
		CallID:      mo.CallId,
		TenantID:    mo.TenantId,
		CallerPhone: mo.CallerPhone,
		State:       entity.CallState(mo.State),
		Summary:     mo.Summary,
		BookingID:   mo.BookingId,
		StartedAt:   mo.StartedAt,
		EndedAt:     mo.EndedAt,
	}

	// Stored JSON is our own write; a decode failure leaves the zero
	// value rather than failing the read.
	if len(mo.Slots) > 0 {
		_ = json.Unmarshal(mo.Slots, &e.Slots)
	}
	if len(mo.Transcript) > 0 {
		_ = json.Unmarshal(mo.Transcript, &e.Transcript)
	}
	return e
}
