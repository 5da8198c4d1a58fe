// Package httpapi exposes the recommendation builder over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ma-ji/miscite-sub001/internal/metrics"
	"github.com/ma-ji/miscite-sub001/internal/recommend"
)

const recommendPath = "/v1/recommendations"

// RecommendHandler serves POST /v1/recommendations: it accepts the two
// producer payloads plus the reference-status lookup and returns the
// assembled report. Stateless; each request is independent.
type RecommendHandler struct {
	builder *recommend.Builder
	logger  *zap.Logger
	limiter *rate.Limiter
	maxBody int64
}

// NewRecommendHandler constructs the handler. limiter may be nil to disable
// rate limiting; maxBody <= 0 falls back to 10MB.
func NewRecommendHandler(builder *recommend.Builder, logger *zap.Logger, limiter *rate.Limiter, maxBody int64) *RecommendHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	return &RecommendHandler{builder: builder, logger: logger, limiter: limiter, maxBody: maxBody}
}

// RegisterRoutes attaches the handler to mux.
func (h *RecommendHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(recommendPath, h.handleRecommend)
}

func (h *RecommendHandler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		h.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	var in recommend.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	runID := uuid.NewString()
	report := h.builder.Build(in)
	h.logger.Info("recommendation request served",
		zap.String("run_id", runID),
		zap.String("status", report.Status),
		zap.Int("global_actions", len(report.GlobalActions)),
		zap.Int("sections", len(report.Sections)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", runID)
	metrics.HTTPRequestsTotal.WithLabelValues(recommendPath, strconv.Itoa(http.StatusOK)).Inc()
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Warn("failed to encode response", zap.String("run_id", runID), zap.Error(err))
	}
}

func (h *RecommendHandler) writeError(w http.ResponseWriter, status int, msg string) {
	metrics.HTTPRequestsTotal.WithLabelValues(recommendPath, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
