package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/unifai/unifai/internal/store"
	"github.com/unifai/unifai/pkg/scoring"
)

type moduleResponse struct {
	Key      scoring.Module   `json:"key"`
	Name     string           `json:"name"`
	Category scoring.Category `json:"category"`
}

func (h *Handler) handleListModules(w http.ResponseWriter, r *http.Request) {
	models := h.svc.Models()
	result := make([]moduleResponse, 0, len(models))
	for _, m := range models {
		result = append(result, moduleResponse{Key: m.Key(), Name: m.Name(), Category: m.Category()})
	}
	writeJSON(w, http.StatusOK, result)
}

// readBody reads a request body of at most maxBodyBytes, transparently inflating
// gzip-encoded bodies.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = io.LimitReader(gz, maxBodyBytes)
	}
	return io.ReadAll(body)
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	module := scoring.Module(r.PathValue("module"))

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	p, err := h.svc.Predict(r.Context(), module, data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	var f store.Filter
	if v := r.URL.Query().Get("module"); v != "" {
		if !h.knownModule(v) {
			writeError(w, http.StatusBadRequest, "unknown module: "+strconv.Quote(v))
			return
		}
		f.Module = scoring.Module(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	records, err := h.svc.Recent(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) knownModule(key string) bool {
	for _, m := range h.svc.Models() {
		if string(m.Key()) == key {
			return true
		}
	}
	return false
}

func (h *Handler) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetArchived serves the archived document of a prediction verbatim.
func (h *Handler) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	module := scoring.Module(r.PathValue("module"))
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid prediction id")
		return
	}

	data, err := h.svc.Archived(r.Context(), module, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Analytics(r.Context(), h.now())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
