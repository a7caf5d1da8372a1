package ui

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yuankika/final-computer/internal/calculator"
)

const defaultOperator = "+"

// State is what one browser sees. Outcome is nil until a submission
// completes, so a result and an error are never shown together.
type State struct {
	First    string
	Second   string
	Operator string
	Outcome  calculator.Outcome
	Busy     bool

	// Expr is the "a op b" echoed next to a result. It is taken from the
	// inputs at submit time.
	Expr string
}

// Session holds the form state of one browser. Every method is safe for
// concurrent use.
//
// Each accepted submission takes a sequence number. A completion is applied
// only while its number is still the latest, so a reply that arrives after a
// newer submission or a reset is dropped.
type Session struct {
	ID string

	mu    sync.Mutex
	state State
	seq   uint64

	lastSeen time.Time // guarded by Store.mu
}

func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		state: State{Operator: defaultOperator},
	}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetOperands records the raw input texts.
func (s *Session) SetOperands(first, second string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.First = first
	s.state.Second = second
}

// SelectOperator stores symbol as is. Unknown symbols are reported by the
// calculator on submit.
func (s *Session) SelectOperator(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Operator = symbol
}

// Reset returns the form to its initial state and orphans any call in
// flight.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.state = State{Operator: defaultOperator}
}

// SubmitResult describes what a Submit did.
type SubmitResult struct {
	Outcome calculator.Outcome
	// Called is false when the operands were rejected locally.
	Called bool
	// Stale is true when a newer submission or a reset superseded this one
	// and Outcome was dropped.
	Stale bool
}

// Submit validates the operands and, when both are finite numbers, asks calc
// for the result. The session lock is not held during the call.
func (s *Session) Submit(ctx context.Context, calc calculator.Calculator) SubmitResult {
	s.mu.Lock()
	s.state.Outcome = nil
	s.state.Expr = ""
	s.seq++
	seq := s.seq

	a, okA := parseOperand(s.state.First)
	b, okB := parseOperand(s.state.Second)
	if !okA || !okB {
		out := calculator.Failure{Kind: calculator.KindInvalidInput, Message: calculator.MsgInvalidNumbers}
		s.state.Outcome = out
		s.state.Busy = false
		s.mu.Unlock()
		return SubmitResult{Outcome: out}
	}

	op := s.state.Operator
	expr := strings.TrimSpace(s.state.First) + " " + op + " " + strings.TrimSpace(s.state.Second)
	s.state.Busy = true
	s.mu.Unlock()

	out, err := calc.Calculate(ctx, a, b, op)
	if err != nil || out == nil {
		out = calculator.Failure{Kind: calculator.KindFailed, Message: calculator.MsgCalculationFailed}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return SubmitResult{Outcome: out, Called: true, Stale: true}
	}

	s.state.Outcome = out
	s.state.Expr = expr
	s.state.Busy = false
	return SubmitResult{Outcome: out, Called: true}
}

// parseOperand accepts a decimal or scientific float. Surrounding spaces
// are ignored. NaN and infinities are refused.
func parseOperand(text string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return v, calculator.IsFinite(v)
}
