package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/entity"
	"voice-intake-be/internal/pkg/logger"
	"voice-intake-be/pkg/llm"
	"voice-intake-be/pkg/normalize"
)

const ActionBookJob = "book_job"

// Decision is the policy's structured next-turn output. SlotUpdates only
// carries values learned this turn; everything else is nil.
type Decision struct {
	Utterance   string
	NextState   entity.CallState
	SlotUpdates entity.Slots
	Action      string
}

// Policy decides the next spoken response and state transition for a
// call. Implementations must never fail on malformed model output; an
// error return means the model was unreachable.
type Policy interface {
	NextTurn(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, callerUtterance string) (*Decision, error)
}

type LLMPolicy struct {
	provider     llm.LLMProvider
	timeout      time.Duration
	historyTurns int
	logger       logger.ILogger
}

func NewLLMPolicy(provider llm.LLMProvider, timeout time.Duration, historyTurns int, log logger.ILogger) *LLMPolicy {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	if historyTurns <= 0 {
		historyTurns = 20
	}
	return &LLMPolicy{
		provider:     provider,
		timeout:      timeout,
		historyTurns: historyTurns,
		logger:       log,
	}
}

// NextTurn sends the system prompt, the recent transcript and the new
// caller utterance to the model. A transport failure or timeout returns
// an error (the engine falls back to a scripted line); unparsable model
// output degrades to a raw-text decision with the state unchanged.
func (p *LLMPolicy) NextTurn(ctx context.Context, tenant *entity.Tenant, session *entity.CallSession, callerUtterance string) (*Decision, error) {
	history := make([]llm.Message, 0, p.historyTurns+2)
	history = append(history, llm.Message{
		Role:    llm.RoleSystem,
		Content: BuildSystemPrompt(tenant.Name, session),
	})

	for _, turn := range session.RecentTurns(p.historyTurns) {
		role := llm.RoleUser
		if turn.Role == entity.TranscriptRoleAgent {
			role = llm.RoleModel
		}
		history = append(history, llm.Message{Role: role, Content: turn.Text})
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: callerUtterance})

	// A slow model response must never stall the caller; the engine has
	// a scripted line ready when this expires.
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.provider.Chat(cctx, history, llm.WithTemperature(0.4))
	if err != nil {
		return nil, fmt.Errorf("policy model call: %w", err)
	}

	return p.parse(raw, session.State), nil
}

// policyWire mirrors the JSON contract the model is instructed to emit.
type policyWire struct {
	ResponseText  string          `json:"response_text"`
	NextState     string          `json:"next_state"`
	CollectedData policySlotsWire `json:"collected_data"`
	Action        *string         `json:"action"`
}

type policySlotsWire struct {
	Name             *string   `json:"name"`
	Phone            *string   `json:"phone"`
	PhoneConfirmed   *flexBool `json:"phone_confirmed"`
	Address          *string   `json:"address"`
	AddressConfirmed *flexBool `json:"address_confirmed"`
	Issue            *string   `json:"issue"`
	Urgency          *string   `json:"urgency"`
	PreferredDay     *string   `json:"preferred_day"`
	PreferredTime    *string   `json:"preferred_time"`
}

// flexBool tolerates the model answering a boolean slot with "true",
// "yes" or a real bool.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "yes", "y", "confirmed":
			*b = true
		default:
			*b = false
		}
		return nil
	}
	return fmt.Errorf("not a boolean value: %s", string(data))
}

// parse treats the model output exactly like external network input:
// strict decode with a deterministic fallback. On any decode failure the
// raw text becomes the spoken response, the state stays put and nothing
// is merged.
func (p *LLMPolicy) parse(raw string, current entity.CallState) *Decision {
	cleaned := stripFences(raw)

	var wire policyWire
	if err := json.Unmarshal(cleaned, &wire); err != nil {
		// Plain prose from the model is still speakable as-is.
		if p.logger != nil {
			p.logger.Warn("DialoguePolicy", "Unparsable model output, falling back to raw text", map[string]interface{}{
				"raw": raw,
			})
		}
		return &Decision{
			Utterance: strings.TrimSpace(raw),
			NextState: current,
		}
	}
	if strings.TrimSpace(wire.ResponseText) == "" {
		// Valid JSON with nothing to say. Reading the blob aloud would
		// be worse than a re-ask, so use the scripted line.
		if p.logger != nil {
			p.logger.Warn("DialoguePolicy", "Model returned JSON without response_text", map[string]interface{}{
				"raw": raw,
			})
		}
		return &Decision{
			Utterance: constant.ScriptedPolicyFallback,
			NextState: current,
		}
	}

	d := &Decision{
		Utterance:   strings.TrimSpace(wire.ResponseText),
		NextState:   entity.CallState(wire.NextState),
		SlotUpdates: normalizeSlots(wire.CollectedData),
	}
	if wire.Action != nil && *wire.Action == ActionBookJob {
		d.Action = ActionBookJob
	}
	return d
}

// stripFences removes a markdown code fence the model may wrap its JSON
// in, plus any prose around the outermost object.
func stripFences(raw string) []byte {
	b := bytes.TrimSpace([]byte(raw))
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	b = bytes.TrimSpace(b)

	start := bytes.IndexByte(b, '{')
	end := bytes.LastIndexByte(b, '}')
	if start >= 0 && end > start {
		b = b[start : end+1]
	}
	return b
}

// normalizeSlots passes every model-returned value through the
// normalizer before it can touch session state. Empty results become
// nil so the merge never overwrites real data with noise.
func normalizeSlots(w policySlotsWire) entity.Slots {
	var s entity.Slots

	if w.Name != nil {
		if cleaned := normalize.CleanName(*w.Name); cleaned != "" {
			s.Name = &cleaned
		}
	}
	if w.Phone != nil {
		if cleaned := normalize.NormalizePhone(*w.Phone); cleaned != "" {
			s.Phone = &cleaned
		}
	}
	if w.PhoneConfirmed != nil {
		v := bool(*w.PhoneConfirmed)
		s.PhoneConfirmed = &v
	}
	if w.Address != nil {
		if cleaned := normalize.CleanAddress(*w.Address); cleaned != "" {
			s.Address = &cleaned
		}
	}
	if w.AddressConfirmed != nil {
		v := bool(*w.AddressConfirmed)
		s.AddressConfirmed = &v
	}
	if w.Issue != nil {
		if cleaned := normalize.CleanAddress(*w.Issue); cleaned != "" {
			s.Issue = &cleaned
		}
	}
	if w.Urgency != nil {
		upper := strings.ToUpper(strings.TrimSpace(*w.Urgency))
		if entity.Urgency(upper).Valid() {
			s.Urgency = &upper
		}
	}
	if w.PreferredDay != nil {
		if day := strings.ToLower(strings.TrimSpace(*w.PreferredDay)); day != "" {
			s.PreferredDay = &day
		}
	}
	if w.PreferredTime != nil {
		if tod := strings.ToLower(strings.TrimSpace(*w.PreferredTime)); tod != "" {
			s.PreferredTime = &tod
		}
	}
	return s
}
