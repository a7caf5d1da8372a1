package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yuankika/final-computer/internal/calculator"
)

type call struct {
	a, b float64
	op   string
}

// fakeCalculator records calls and answers with respond.
type fakeCalculator struct {
	mu      sync.Mutex
	calls   []call
	respond func(a, b float64, op string) (calculator.Outcome, error)
}

func (f *fakeCalculator) Calculate(ctx context.Context, a, b float64, op string) (calculator.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{a: a, b: b, op: op})
	f.mu.Unlock()

	if f.respond == nil {
		return calculator.Result{Value: a + b}, nil
	}
	return f.respond(a, b, op)
}

func (f *fakeCalculator) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// gatedCalculator blocks each call until release receives a value.
type gatedCalculator struct {
	entered chan struct{}
	release chan calculator.Outcome
}

func newGatedCalculator() *gatedCalculator {
	return &gatedCalculator{
		entered: make(chan struct{}),
		release: make(chan calculator.Outcome),
	}
}

func (g *gatedCalculator) Calculate(ctx context.Context, a, b float64, op string) (calculator.Outcome, error) {
	g.entered <- struct{}{}
	return <-g.release, nil
}

func waitEntered(t *testing.T, g *gatedCalculator) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("calculator was not called")
	}
}

func TestNewSessionInitialState(t *testing.T) {
	st := NewSession("s1").Snapshot()

	if st.First != "" || st.Second != "" {
		t.Fatalf("expected empty operands, got %q and %q", st.First, st.Second)
	}
	if st.Operator != "+" {
		t.Fatalf("expected operator %q, got %q", "+", st.Operator)
	}
	if st.Outcome != nil {
		t.Fatalf("expected no outcome, got %#v", st.Outcome)
	}
	if st.Busy {
		t.Fatal("expected session not to be busy")
	}
}

func TestSubmitSetsResult(t *testing.T) {
	calc := &fakeCalculator{}
	s := NewSession("s1")
	s.SetOperands(" 10 ", "5")

	res := s.Submit(context.Background(), calc)
	if !res.Called || res.Stale {
		t.Fatalf("expected an applied call, got %+v", res)
	}

	calls := calc.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0] != (call{a: 10, b: 5, op: "+"}) {
		t.Fatalf("unexpected call %+v", calls[0])
	}

	st := s.Snapshot()
	if r, ok := st.Outcome.(calculator.Result); !ok || r.Value != 15 {
		t.Fatalf("expected result 15, got %#v", st.Outcome)
	}
	if st.Expr != "10 + 5" {
		t.Fatalf("expected expr %q, got %q", "10 + 5", st.Expr)
	}
	if st.Busy {
		t.Fatal("expected busy to be cleared")
	}
}

func TestResetAfterSuccessClearsEverything(t *testing.T) {
	s := NewSession("s1")
	s.SetOperands("10", "5")
	s.SelectOperator("*")
	s.Submit(context.Background(), &fakeCalculator{})

	s.Reset()

	st := s.Snapshot()
	if st.First != "" || st.Second != "" {
		t.Fatalf("expected empty operands, got %q and %q", st.First, st.Second)
	}
	if st.Operator != "+" {
		t.Fatalf("expected operator reset to %q, got %q", "+", st.Operator)
	}
	if st.Outcome != nil {
		t.Fatalf("expected outcome cleared, got %#v", st.Outcome)
	}
	if st.Expr != "" {
		t.Fatalf("expected expr cleared, got %q", st.Expr)
	}
}

func TestSubmitRejectsInvalidOperandsWithoutCall(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
	}{
		{name: "non numeric first", first: "abc", second: "1"},
		{name: "non numeric second", first: "1", second: "two"},
		{name: "empty", first: "", second: "1"},
		{name: "trailing garbage", first: "12abc", second: "1"},
		{name: "nan", first: "NaN", second: "1"},
		{name: "infinity", first: "1", second: "-Inf"},
		{name: "overflow", first: "1e400", second: "1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calc := &fakeCalculator{}
			s := NewSession("s1")
			s.SetOperands(tc.first, tc.second)

			res := s.Submit(context.Background(), calc)
			if res.Called {
				t.Fatal("expected no call")
			}
			if n := len(calc.Calls()); n != 0 {
				t.Fatalf("expected no calculator calls, got %d", n)
			}

			f, ok := s.Snapshot().Outcome.(calculator.Failure)
			if !ok || f.Message != calculator.MsgInvalidNumbers {
				t.Fatalf("expected %q, got %#v", calculator.MsgInvalidNumbers, s.Snapshot().Outcome)
			}
		})
	}
}

func TestSubmitClearsPreviousOutcome(t *testing.T) {
	s := NewSession("s1")
	s.SetOperands("abc", "1")
	s.Submit(context.Background(), &fakeCalculator{})

	s.SetOperands("2", "3")
	s.Submit(context.Background(), &fakeCalculator{})

	if _, ok := s.Snapshot().Outcome.(calculator.Result); !ok {
		t.Fatalf("expected the error to be replaced by a result, got %#v", s.Snapshot().Outcome)
	}
}

func TestSubmitPassesFailureThrough(t *testing.T) {
	calc := &fakeCalculator{respond: func(a, b float64, op string) (calculator.Outcome, error) {
		return calculator.Failure{Kind: calculator.KindUnsupportedOperation, Message: calculator.MsgUnsupportedOperation}, nil
	}}
	s := NewSession("s1")
	s.SetOperands("1", "2")
	s.SelectOperator("%")

	s.Submit(context.Background(), calc)

	if got := calc.Calls()[0].op; got != "%" {
		t.Fatalf("expected operator %q to be passed through, got %q", "%", got)
	}
	f, ok := s.Snapshot().Outcome.(calculator.Failure)
	if !ok || f.Message != calculator.MsgUnsupportedOperation {
		t.Fatalf("expected %q, got %#v", calculator.MsgUnsupportedOperation, s.Snapshot().Outcome)
	}
}

func TestSubmitCallErrorShowsFallback(t *testing.T) {
	calc := &fakeCalculator{respond: func(a, b float64, op string) (calculator.Outcome, error) {
		return nil, errors.New("context canceled")
	}}
	s := NewSession("s1")
	s.SetOperands("1", "2")

	s.Submit(context.Background(), calc)

	st := s.Snapshot()
	f, ok := st.Outcome.(calculator.Failure)
	if !ok || f.Message != calculator.MsgCalculationFailed {
		t.Fatalf("expected %q, got %#v", calculator.MsgCalculationFailed, st.Outcome)
	}
	if st.Busy {
		t.Fatal("expected busy to be cleared")
	}
}

func TestSubmitIsBusyWhileInFlight(t *testing.T) {
	calc := newGatedCalculator()
	s := NewSession("s1")
	s.SetOperands("1", "2")

	done := make(chan SubmitResult, 1)
	go func() { done <- s.Submit(context.Background(), calc) }()

	waitEntered(t, calc)
	if !s.Snapshot().Busy {
		t.Fatal("expected session to be busy during the call")
	}

	calc.release <- calculator.Result{Value: 3}
	<-done

	if s.Snapshot().Busy {
		t.Fatal("expected busy to be cleared after the call")
	}
}

func TestResetDiscardsStaleCompletion(t *testing.T) {
	calc := newGatedCalculator()
	s := NewSession("s1")
	s.SetOperands("10", "5")

	done := make(chan SubmitResult, 1)
	go func() { done <- s.Submit(context.Background(), calc) }()

	waitEntered(t, calc)
	s.Reset()
	calc.release <- calculator.Result{Value: 15}
	res := <-done

	if !res.Stale {
		t.Fatal("expected the completion to be reported as stale")
	}

	st := s.Snapshot()
	if st.Outcome != nil {
		t.Fatalf("expected reset state to survive the late reply, got %#v", st.Outcome)
	}
	if st.Busy {
		t.Fatal("expected busy to stay cleared after reset")
	}
	if st.First != "" || st.Second != "" {
		t.Fatalf("expected empty operands, got %q and %q", st.First, st.Second)
	}
}

func TestLatestSubmitWins(t *testing.T) {
	slow := newGatedCalculator()
	s := NewSession("s1")
	s.SetOperands("1", "1")

	first := make(chan SubmitResult, 1)
	go func() { first <- s.Submit(context.Background(), slow) }()
	waitEntered(t, slow)

	s.SetOperands("2", "2")
	s.Submit(context.Background(), &fakeCalculator{})

	slow.release <- calculator.Result{Value: 2}
	if res := <-first; !res.Stale {
		t.Fatal("expected the older submission to be stale")
	}

	if r, ok := s.Snapshot().Outcome.(calculator.Result); !ok || r.Value != 4 {
		t.Fatalf("expected the newer result 4, got %#v", s.Snapshot().Outcome)
	}
}
