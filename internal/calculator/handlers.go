package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yuankika/final-computer/internal/handlers"
	"github.com/yuankika/final-computer/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxRequestBytes = 1 << 16

// Calculator is the operation the HTTP layers depend on. *Client implements
// it.
type Calculator interface {
	Calculate(ctx context.Context, a, b float64, symbol string) (Outcome, error)
}

// API serves the JSON form of Calculate.
type API struct {
	calc Calculator
}

func NewAPI(calc Calculator) *API {
	return &API{calc: calc}
}

// Calculate handles POST /api/v1/calculate. Outcomes, including failures,
// are answered with 200. Only undecodable requests get a 4xx.
func (api *API) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.api.calculate",
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	var req CalcRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "calculate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if req.A == nil || req.B == nil {
		observability.RecordError(ctx, span, logger, errorCounter, "calculate", "a and b are required", errors.New("missing operand"), http.StatusBadRequest, w)
		return
	}

	out, err := api.calc.Calculate(ctx, *req.A, *req.B, req.Op)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "calculate", MsgCalculationFailed, err, http.StatusServiceUnavailable, w)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, responseFor(out))
}
