package httpserver

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/internal/simulator"
)

// Tracer fetches the execution trace of a mined transaction.
type Tracer interface {
	Trace(ctx context.Context, txHash string) (*simulator.TraceReport, error)
}

// TraceHandler handles transaction trace lookups.
type TraceHandler struct {
	tracer Tracer
	logger *zap.Logger
}

// NewTraceHandler creates a new trace handler.
func NewTraceHandler(tracer Tracer, logger *zap.Logger) *TraceHandler {
	return &TraceHandler{
		tracer: tracer,
		logger: logger,
	}
}

type traceRequest struct {
	TxHash string `json:"txHash"`
}

type traceResponse struct {
	Success bool                   `json:"success"`
	Data    *simulator.TraceReport `json:"data"`
}

// HandleSimulateTransaction handles POST /simulate-transaction requests.
func (h *TraceHandler) HandleSimulateTransaction(w http.ResponseWriter, r *http.Request) {
	var body traceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, h.logger, errorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	if body.TxHash == "" {
		writeJSON(w, http.StatusBadRequest, h.logger, errorResponse{
			Error: "transaction hash is required",
		})
		return
	}

	if !simulator.ValidTxHash(body.TxHash) {
		writeJSON(w, http.StatusBadRequest, h.logger, errorResponse{
			Error: "invalid transaction hash format",
		})
		return
	}

	report, err := h.tracer.Trace(r.Context(), body.TxHash)
	if err != nil {
		if errors.Is(err, simulator.ErrTxNotFound) {
			writeJSON(w, http.StatusNotFound, h.logger, errorResponse{
				Error: "transaction not found",
			})
			return
		}

		h.logger.Error("trace-failed", zap.String("tx-hash", body.TxHash), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, h.logger, errorResponse{
			Error:   "failed to trace transaction",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, h.logger, traceResponse{
		Success: true,
		Data:    report,
	})
}
