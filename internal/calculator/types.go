package calculator

import (
	"encoding/json"
	"math"
	"strconv"
)

// Operator is the wire code of an arithmetic operation. The numeric values
// are shared with the calculation service and must not change.
type Operator int32

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
)

// Operators lists every operator in display order.
var Operators = []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide}

var symbolToOperator = map[string]Operator{
	"+": OpAdd,
	"-": OpSubtract,
	"*": OpMultiply,
	"/": OpDivide,
}

// ParseOperator maps a human symbol to its operator code.
func ParseOperator(symbol string) (Operator, bool) {
	op, ok := symbolToOperator[symbol]
	return op, ok
}

func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return "?"
}

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "operator(" + strconv.Itoa(int(o)) + ")"
}

// Kind says which branch of the error taxonomy produced a Failure.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindUnsupportedOperation Kind = "unsupported_operation"
	KindBusiness             Kind = "business"
	KindProtocol             Kind = "protocol"
	KindTransport            Kind = "transport"
	KindFailed               Kind = "failed"
)

// User-facing messages.
const (
	MsgInvalidNumbers       = "please enter valid numbers"
	MsgUnsupportedOperation = "unsupported operation"
	MsgServiceCallFailed    = "calculation service call failed"
	MsgCalculationFailed    = "calculation failed, please retry later"
	MsgUnknownError         = "unknown error"
)

// Outcome is either a Result or a Failure.
type Outcome interface {
	isOutcome()
}

type Result struct {
	Value float64
}

type Failure struct {
	Kind    Kind
	Message string
}

func (Result) isOutcome()  {}
func (Failure) isOutcome() {}

// OutcomeLabel is the low-cardinality label used for metrics and logs.
func OutcomeLabel(o Outcome) string {
	switch v := o.(type) {
	case Result:
		return "result"
	case Failure:
		return string(v.Kind)
	}
	return "none"
}

// FormatNumber renders v the way a browser would print a number.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsFinite reports whether v can travel as a JSON number.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CalcRequest is the JSON body of POST /api/v1/calculate.
type CalcRequest struct {
	A  *float64 `json:"a"`
	B  *float64 `json:"b"`
	Op string   `json:"op"`
}

// CalcResponse carries exactly one of Result or Error.
type CalcResponse struct {
	Result *float64 `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func responseFor(o Outcome) CalcResponse {
	switch v := o.(type) {
	case Result:
		value := v.Value
		return CalcResponse{Result: &value}
	case Failure:
		return CalcResponse{Error: v.Message}
	}
	return CalcResponse{Error: MsgCalculationFailed}
}

// wireRequest is the body sent to the calculation service.
type wireRequest struct {
	A  float64  `json:"a"`
	B  float64  `json:"b"`
	Op Operator `json:"op"`
}

// errorEnvelope is the Connect error body sent with non-2xx responses.
type errorEnvelope struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}
