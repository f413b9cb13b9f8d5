package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

// streamAnswer replays an already-synthesized answer as an SSE stream: text
// deltas first, then one final event carrying the structured fields.
func (rt *Router) streamAnswer(w http.ResponseWriter, answer *domain.Answer) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody("streaming is not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, part := range splitByRunes(answer.Text, rt.opts.StreamChunkChars) {
		if err := writeSSEEvent(w, map[string]any{"delta": part}); err != nil {
			return
		}
		flusher.Flush()
	}

	final := map[string]any{
		"done":         true,
		"sources_used": answer.SourcesUsed,
	}
	if answer.VisualDirective != nil {
		final["visual_directive"] = answer.VisualDirective
	}
	if err := writeSSEEvent(w, final); err != nil {
		return
	}
	flusher.Flush()

	if _, err := io.WriteString(w, "data: [DONE]\n\n"); err != nil {
		return
	}
	flusher.Flush()
}

func writeSSEEvent(w http.ResponseWriter, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", encoded)
	return err
}

func splitByRunes(text string, chunkChars int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}
	if chunkChars <= 0 || utf8.RuneCountInString(text) <= chunkChars {
		return []string{text}
	}

	parts := make([]string, 0, utf8.RuneCountInString(text)/chunkChars+1)
	runes := []rune(text)
	for start := 0; start < len(runes); start += chunkChars {
		end := start + chunkChars
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
