package dto

import "time"

type TranscriptTurnResponse struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type CallLogResponse struct {
	CallId      string                   `json:"call_id"`
	CallerPhone string                   `json:"caller_phone"`
	State       string                   `json:"state"`
	Summary     string                   `json:"summary"`
	BookingId   *string                  `json:"booking_id"`
	StartedAt   time.Time                `json:"started_at"`
	EndedAt     *time.Time               `json:"ended_at"`
	Transcript  []TranscriptTurnResponse `json:"transcript,omitempty"`
}

type LeadResponse struct {
	Id        string    `json:"id"`
	CallId    string    `json:"call_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Issue     string    `json:"issue"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type PagedResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type ListQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
