package factory

import (
	"fmt"

	"voice-intake-be/pkg/llm"
	"voice-intake-be/pkg/llm/gemini"
	"voice-intake-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, geminiAPIKey, ollamaBaseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		if modelName == "" {
			modelName = "gemini-1.5-flash"
		}
		return gemini.NewGeminiProvider(geminiAPIKey, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434"
		}
		if modelName == "" {
			modelName = "llama3"
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
