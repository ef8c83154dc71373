package analysis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mediaid/platform/pkg/common/logger"
	"github.com/mediaid/platform/pkg/common/middleware"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/text/analyze", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/symptoms/search", h.handleSearch).Methods(http.MethodPost)
	router.HandleFunc("/concepts/{id}", h.handleConcept).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/analyses/{id}", h.handleHistory).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid analyze payload")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Source = SourceHTTP
	if req.RequestID == "" {
		req.RequestID = middleware.RequestID(r.Context())
	}

	resp, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		if IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.WithError(err).Error("failed to analyze text")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == nil {
		writeError(w, http.StatusBadRequest, errMissingQuery.Error())
		return
	}

	resp, err := h.service.Search(*req.Query)
	if err != nil {
		if IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Log.WithError(err).Error("failed to search concepts")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleConcept(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	concept, err := h.service.Concept(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "concept not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, concept)
}

func (h *HTTPHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Statistics())
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.service.History(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrHistoryDisabled):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "analysis not found")
		default:
			logger.Log.WithError(err).Error("failed to fetch analysis record")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
