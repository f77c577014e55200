package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/unifai/unifai/internal/gateway"
	"github.com/unifai/unifai/internal/service"
)

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req service.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PredictionID != "" {
		if _, err := uuid.Parse(req.PredictionID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid prediction id")
			return
		}
	}
	if req.Module == "" && req.PredictionID == "" {
		writeError(w, http.StatusBadRequest, "moduleType or predictionId is required")
		return
	}

	text, err := h.svc.Explain(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"explanation": text})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	req, err := gateway.DecodeChatRequest(data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	sw := &streamWriter{w: w}
	err = h.svc.Chat(r.Context(), req, sw)
	switch {
	case err == nil:
		if !sw.started {
			sw.start()
		}
	case sw.started:
		h.logger.Warn("chat stream interrupted", "error", err)
	case errors.Is(err, gateway.ErrCreditsExhausted):
		writeError(w, http.StatusPaymentRequired, msgChatNoCredits)
	default:
		h.writeServiceError(w, err)
	}
}

// streamWriter commits the event-stream headers on the first write, so errors that
// happen before the gateway answers can still be reported as JSON.
type streamWriter struct {
	w       http.ResponseWriter
	started bool
}

func (s *streamWriter) start() {
	s.w.Header().Set("Content-Type", "text/event-stream")
	s.w.Header().Set("Cache-Control", "no-cache")
	s.w.WriteHeader(http.StatusOK)
	s.started = true
}

func (s *streamWriter) Write(p []byte) (int, error) {
	if !s.started {
		s.start()
	}
	return s.w.Write(p)
}

func (s *streamWriter) Flush() {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}
