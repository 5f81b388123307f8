package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/abhisek/studyloop/internal/questiongen"
)

// SSE event names.
const (
	eventStart    = "start"
	eventDelta    = "delta"
	eventQuestion = "question"
	eventError    = "error"
	eventDone     = "done"
)

// StreamQuestions streams generation progress as server-sent events:
// start, delta and question per question, then done, or error on failure.
func (h *Handler) StreamQuestions(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decode(r, &body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	req, err := body.toTutor()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) {
		raw, err := json.Marshal(v)
		if err != nil {
			h.log.Warn("failed to marshal SSE event", "event", event, "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, raw)
		flusher.Flush()
	}

	completed := 0
	for ev, err := range h.tutor.StreamQuestions(r.Context(), req) {
		if err != nil {
			send(eventError, errorResponse{Error: err.Error()})
			return
		}
		switch ev := ev.(type) {
		case questiongen.Started:
			send(eventStart, map[string]int{"index": ev.Index, "total": ev.Total})
		case questiongen.Delta:
			send(eventDelta, map[string]string{"text": ev.Text})
		case questiongen.Completed:
			completed++
			send(eventQuestion, ev.Question)
		}
	}
	send(eventDone, map[string]int{"count": completed})
}
