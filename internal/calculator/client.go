package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yuankika/final-computer/internal/observability"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CalculatePath is the Connect unary route of CalculatorService.Calculate.
const CalculatePath = "/api/calculator.CalculatorService/Calculate"

const (
	protocolVersionHeader = "Connect-Protocol-Version"
	protocolVersion       = "1"

	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

var tracer = otel.Tracer("calculator")

type Options struct {
	// BaseURL is the scheme and host of the calculation service, e.g.
	// http://localhost:8080. A path prefix is kept.
	BaseURL string
	// Timeout bounds one call, including reading the body. Zero means
	// DefaultTimeout.
	Timeout time.Duration
	// HTTPClient replaces the traced default client. Tests use it.
	HTTPClient *http.Client
}

// Client talks to the calculation service. It is safe for concurrent use.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: unsupported scheme %q", opts.BaseURL, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", opts.BaseURL)
	}

	if err := InitMetrics(); err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: observability.TracingTransport(nil),
			Timeout:   timeout,
		}
	}

	return &Client{
		endpoint: base.String() + CalculatePath,
		timeout:  timeout,
		http:     hc,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Calculate sends a op b to the calculation service and classifies the
// reply. Every service-side problem comes back as a Failure. The error is
// non-nil only when ctx ends before the call completes.
func (c *Client) Calculate(ctx context.Context, a, b float64, symbol string) (Outcome, error) {
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	op, ok := ParseOperator(symbol)
	if !ok {
		out := Failure{Kind: KindUnsupportedOperation, Message: MsgUnsupportedOperation}
		c.record(ctx, out)
		logger.Warn("unsupported operator",
			zap.String("symbol", symbol),
			zap.String("request_id", requestID),
		)
		return out, nil
	}

	if !IsFinite(a) || !IsFinite(b) {
		out := Failure{Kind: KindInvalidInput, Message: MsgInvalidNumbers}
		c.record(ctx, out)
		return out, nil
	}

	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("calculator.operation", op.String()),
			attribute.Float64("calculator.operand.a", a),
			attribute.Float64("calculator.operand.b", b),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	start := time.Now()
	out, err := c.call(ctx, wireRequest{A: a, B: b, Op: op})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "call abandoned")
		logger.Info("calculation abandoned",
			zap.String("operation", op.String()),
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		return nil, err
	}

	c.record(ctx, out)
	callDuration.Record(ctx, elapsed, metric.WithAttributes(attribute.String("outcome", OutcomeLabel(out))))

	switch v := out.(type) {
	case Result:
		span.SetAttributes(attribute.Float64("calculator.result", v.Value))
		span.SetStatus(codes.Ok, "")
		resultGauge.Record(ctx, v.Value, metric.WithAttributes(attribute.String("operation", op.String())))

		logger.Info("calculation completed",
			zap.String("operation", op.String()),
			zap.Float64("a", a),
			zap.Float64("b", b),
			zap.Float64("result", v.Value),
			zap.String("request_id", requestID),
			zap.Float64("duration_ms", elapsed),
		)
	case Failure:
		span.SetAttributes(attribute.String("calculator.failure.kind", string(v.Kind)))
		span.SetStatus(codes.Error, v.Message)

		logger.Warn("calculation failed",
			zap.String("operation", op.String()),
			zap.String("kind", string(v.Kind)),
			zap.String("message", v.Message),
			zap.String("request_id", requestID),
			zap.Float64("duration_ms", elapsed),
		)
	}

	return out, nil
}

func (c *Client) call(ctx context.Context, body wireRequest) (Outcome, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Failure{Kind: KindTransport, Message: MsgServiceCallFailed}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Failure{Kind: KindTransport, Message: MsgServiceCallFailed}, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(protocolVersionHeader, protocolVersion)
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return Failure{Kind: KindTransport, Message: MsgServiceCallFailed}, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return Failure{Kind: KindTransport, Message: MsgServiceCallFailed}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp.StatusCode, raw), nil
	}

	return classify(raw), nil
}

// classify interprets a 2xx body. The error and code checks are independent
// and run in that order.
func classify(raw []byte) Outcome {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Failure{Kind: KindTransport, Message: MsgServiceCallFailed}
	}

	if msg, ok := nonEmptyString(fields["error"]); ok {
		return Failure{Kind: KindBusiness, Message: msg}
	}

	if code, ok := fields["code"]; ok {
		msg, ok := nonEmptyString(fields["message"])
		if !ok {
			msg = MsgUnknownError
		}
		return Failure{
			Kind:    KindProtocol,
			Message: fmt.Sprintf("error code: %s, message: %s", renderCode(code), msg),
		}
	}

	var result float64
	if v, ok := fields["result"]; ok {
		if err := json.Unmarshal(v, &result); err != nil {
			result = 0
		}
	}
	return Result{Value: result}
}

func serverError(status int, raw []byte) Failure {
	msg := "request failed with status code " + strconv.Itoa(status)

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		msg = env.Message
	}

	return Failure{
		Kind:    KindTransport,
		Message: fmt.Sprintf("server error(%d): %s", status, msg),
	}
}

// renderCode prints numeric codes as numbers and maps Connect code names
// such as "invalid_argument" to their numeric value.
func renderCode(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if string(trimmed) == "null" {
		return "null"
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return FormatNumber(n)
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		var code connect.Code
		if err := code.UnmarshalText([]byte(name)); err == nil {
			return strconv.FormatUint(uint64(code), 10)
		}
		return name
	}

	return string(trimmed)
}

func nonEmptyString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (c *Client) record(ctx context.Context, out Outcome) {
	callsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", OutcomeLabel(out))))
}
