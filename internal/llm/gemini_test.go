package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGemini_Validation(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.0-flash")
	assert.Error(t, err)
	_, err = NewGemini(context.Background(), "key", "")
	assert.Error(t, err)
}

func TestGemini_Generate(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "```json\n[{\"agent\":\"Emma\",\"emoji\":\"🎯\",\"message\":\"Delight.\"}]\n```"}},
				},
			}},
		})
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "g-key", "gemini-2.0-flash", WithBaseURL(srv.URL))
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{System: "SYS", Pitch: "Napkin SaaS"})
	require.NoError(t, err)
	assert.Contains(t, body, "SYS\\nUSER INPUT: Napkin SaaS")

	tr, err := ParseTranscript(text)
	require.NoError(t, err)
	require.Len(t, tr, 1)
	assert.Equal(t, "Emma", tr[0].SpeakerName)
}
