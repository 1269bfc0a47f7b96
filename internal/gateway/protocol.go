package gateway

import "encoding/json"

// Vendor stream event types, one JSON object per websocket frame.
const (
	EventTypeSetup     = "setup"
	EventTypePrompt    = "prompt"
	EventTypeInterrupt = "interrupt"
	EventTypeDTMF      = "dtmf"
	EventTypeError     = "error"
	EventTypeEnd       = "end"

	outTypeText = "text"
	outTypeEnd  = "end"
)

// InboundMessage is the union of every vendor event shape. Fields not
// belonging to the frame's type are simply zero.
type InboundMessage struct {
	Type string `json:"type"`

	// setup
	SessionID        string            `json:"sessionId"`
	CustomParameters map[string]string `json:"customParameters"`

	// prompt
	VoicePrompt string `json:"voicePrompt"`
	Last        bool   `json:"last"`
	Lang        string `json:"lang"`

	// interrupt
	UtteranceUntilInterrupt  string `json:"utteranceUntilInterrupt"`
	DurationUntilInterruptMs int64  `json:"durationUntilInterruptMs"`

	// dtmf
	Digit string `json:"digit"`

	// error
	Description string `json:"description"`
}

// TextMessage is a spoken response. The vendor speaks Token verbatim;
// Last marks the end of the utterance so we always send complete
// sentences with last=true.
type TextMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Last  bool   `json:"last"`
}

func NewTextMessage(utterance string) TextMessage {
	return TextMessage{Type: outTypeText, Token: utterance, Last: true}
}

// EndMessage tells the vendor to terminate the stream. HandoffData is
// an opaque JSON string echoed to the vendor's status callback.
type EndMessage struct {
	Type        string `json:"type"`
	HandoffData string `json:"handoffData"`
}

func NewEndMessage(reason string) EndMessage {
	data, _ := json.Marshal(map[string]string{"reason": reason})
	return EndMessage{Type: outTypeEnd, HandoffData: string(data)}
}

// Setup custom parameter keys the vendor is configured to pass through.
const (
	ParamTenantID    = "tenant_id"
	ParamCallerPhone = "caller_phone"
)
