package dialogue

import (
	"encoding/json"
	"fmt"

	"voice-intake-be/internal/constant"
	"voice-intake-be/internal/entity"
	"voice-intake-be/pkg/normalize"
)

// BuildSystemPrompt renders the policy's system instructions for the
// current turn. The caller phone is speech-formatted so the model reads
// it back the way a person would.
func BuildSystemPrompt(tenantName string, session *entity.CallSession) string {
	slotsJSON, err := json.Marshal(session.Slots)
	if err != nil {
		slotsJSON = []byte("{}")
	}

	return fmt.Sprintf(
		constant.VoiceSystemPromptV1,
		tenantName,
		normalize.PhoneForSpeech(session.CallerPhone),
		string(session.State),
		string(slotsJSON),
	)
}
