package httpserver

import (
	"context"
	"math/big"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Ishita-02/The-DeFi-App/pkg/types"
)

// PositionOpener runs the settlement pipeline for one position request.
type PositionOpener interface {
	Open(ctx context.Context, req *types.PositionRequest) *types.SettlementResult
}

// PositionHandler handles HTTP requests to open leveraged positions.
type PositionHandler struct {
	opener PositionOpener
	logger *zap.Logger
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(opener PositionOpener, logger *zap.Logger) *PositionHandler {
	return &PositionHandler{
		opener: opener,
		logger: logger,
	}
}

// openPositionRequest is the POST /open-position body. Amounts are
// human-readable token units.
type openPositionRequest struct {
	Collateral  string `json:"collateral"`
	Coin        string `json:"coin"`
	ColAmount   string `json:"colAmount"`
	CoinAmount  string `json:"coinAmount"`
	UserAddress string `json:"userAddress"`
}

// positionParameters echoes the collateral leg of the built bundle.
// The swap payload stays internal and is never exposed here.
type positionParameters struct {
	Collateral string `json:"collateral"`
	BaseAmount string `json:"baseAmount"`
}

type simulatedResponse struct {
	SimulationURL string             `json:"simulationUrl"`
	SwapOut       string             `json:"swapOut"`
	Parameters    positionParameters `json:"parameters"`
}

type submittedResponse struct {
	TransactionHash string             `json:"transactionHash"`
	SwapOut         string             `json:"swapOut"`
	Parameters      positionParameters `json:"parameters"`
}

type rejectedResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleOpenPosition handles POST /open-position requests.
func (h *PositionHandler) HandleOpenPosition(w http.ResponseWriter, r *http.Request) {
	var body openPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, h.logger, errorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	req := &types.PositionRequest{
		CollateralToken:  body.Collateral,
		BorrowToken:      body.Coin,
		CollateralAmount: body.ColAmount,
		BorrowAmount:     body.CoinAmount,
		UserAddress:      body.UserAddress,
	}

	result := h.opener.Open(r.Context(), req)

	switch result.Status {
	case types.StatusRejected:
		// Aggregator refusals carry the upstream message through
		// untouched so the caller sees why no route was found.
		writeJSON(w, http.StatusOK, h.logger, rejectedResponse{Message: result.Reason})

	case types.StatusSimulated:
		writeJSON(w, http.StatusOK, h.logger, simulatedResponse{
			SimulationURL: result.ReportURL,
			SwapOut:       bigString(result.ProjectedOutput),
			Parameters: positionParameters{
				Collateral: body.Collateral,
				BaseAmount: bigString(result.PostedCollateral),
			},
		})

	case types.StatusSubmitted:
		writeJSON(w, http.StatusOK, h.logger, submittedResponse{
			TransactionHash: result.TxHash,
			SwapOut:         bigString(result.ProjectedOutput),
			Parameters: positionParameters{
				Collateral: body.Collateral,
				BaseAmount: bigString(result.PostedCollateral),
			},
		})

	default:
		status := http.StatusInternalServerError
		if types.IsCallerFault(result.ErrorKind) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, h.logger, errorResponse{
			Error:   "failed to open position",
			Details: result.Detail,
		})
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func writeJSON(w http.ResponseWriter, status int, logger *zap.Logger, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("response-encode-failed", zap.Error(err))
	}
}
