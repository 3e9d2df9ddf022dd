package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"loan-simulator/amortization"
	"loan-simulator/domain"
	"loan-simulator/service"

	"go.uber.org/zap"
)

// maxBodyBytes caps the request body of POST /simulacao.
const maxBodyBytes = 1 << 16

const productNotFoundDetail = "Nenhum produto encontrado baseado nas informações fornecidas."

// Simulator is the operation behind POST /simulacao.
type Simulator interface {
	Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationEnvelope, error)
}

type SimulationHandler struct {
	service Simulator
	logger  *zap.Logger
}

func NewSimulationHandler(service Simulator, logger *zap.Logger) *SimulationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulationHandler{service: service, logger: logger}
}

func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var input domain.SimulationRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Simulate(r.Context(), input)
	switch {
	case err == nil:
		h.writeJSON(w, http.StatusOK, result)
	case errors.Is(err, amortization.ErrInvalidInput), errors.Is(err, amortization.ErrNumericOverflow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrProductNotFound):
		h.writeJSON(w, http.StatusNotFound, domain.ErrorResponse{Detail: productNotFoundDetail})
	default:
		h.logger.Error("simulation failed",
			zap.String("op", "SimulationHandler.Simulate"),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// Health reports liveness.
func (h *SimulationHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// partial body behind a success status.
func (h *SimulationHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		h.logger.Error("error encoding response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("error writing response", zap.Error(err))
	}
}
