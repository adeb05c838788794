package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// SSE event names sent by /recommend/stream
const (
	eventStep     = "step"
	eventResult   = "result"
	eventError    = "error"
	eventComplete = "complete"
)

// Terminal statuses carried by the complete event
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// eventStream writes Server-Sent Events for one analysis request.
// Every stream ends with exactly one complete event.
type eventStream struct {
	mu        sync.Mutex
	w         http.ResponseWriter
	flusher   http.Flusher
	requestID string
	closed    bool
}

// newEventStream sends the SSE headers and a 200 status
func newEventStream(w http.ResponseWriter, requestID string) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher, requestID: requestID}, nil
}

// Send writes one event. Progress callbacks may call it from any goroutine.
func (s *eventStream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream already completed")
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Succeed sends the result followed by a completed status
func (s *eventStream) Succeed(result any) error {
	if err := s.Send(eventResult, result); err != nil {
		return err
	}
	return s.finish(statusCompleted)
}

// Fail sends the error message followed by a failed status
func (s *eventStream) Fail(message string) error {
	if err := s.Send(eventError, map[string]string{"error": message, "request_id": s.requestID}); err != nil {
		return err
	}
	return s.finish(statusFailed)
}

func (s *eventStream) finish(status string) error {
	err := s.Send(eventComplete, map[string]string{
		"request_id": s.requestID,
		"status":     status,
	})
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
