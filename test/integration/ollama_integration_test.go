package integration

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"voice-intake-be/pkg/llm"
	"voice-intake-be/pkg/llm/ollama"
)

const ollamaBaseURL = "http://localhost:11434"

// TestOllamaChat exercises the local Ollama provider end to end. Needs
// a running Ollama daemon with the model pulled; skipped otherwise.
func TestOllamaChat(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") == "" {
		t.Skip("Skipping: OLLAMA_INTEGRATION not set")
	}
	conn, err := net.DialTimeout("tcp", "localhost:11434", time.Second)
	if err != nil {
		t.Skipf("Skipping: Ollama not reachable: %v", err)
	}
	conn.Close()

	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3"
	}
	provider := ollama.NewOllamaProvider(ollamaBaseURL, model)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reply, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You answer with a single word."},
		{Role: llm.RoleUser, Content: "Say the word hello."},
	}, llm.WithTemperature(0))
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if reply == "" {
		t.Fatal("empty reply from model")
	}
	t.Logf("model reply: %q", reply)
}
