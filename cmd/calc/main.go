// Command calc sends one calculation to the calculation service and prints
// the outcome.
//
//	calc [-url URL] [-timeout D] <a> <op> <b>
//
// Use -- before a negative first operand, e.g. calc -- -3 + 2.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/yuankika/final-computer/internal/calculator"
	"github.com/yuankika/final-computer/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: calc [-url URL] [-timeout D] <a> <op> <b>")
		fmt.Fprintln(fs.Output(), "supported operators: + - * /")
		fs.PrintDefaults()
	}

	baseURL := fs.String("url", cfg.ServiceURL, "calculation service base URL")
	timeout := fs.Duration("timeout", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}

	a, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil || !calculator.IsFinite(a) {
		fmt.Fprintln(stdout, "error:", calculator.MsgInvalidNumbers)
		return 1
	}
	b, err := strconv.ParseFloat(fs.Arg(2), 64)
	if err != nil || !calculator.IsFinite(b) {
		fmt.Fprintln(stdout, "error:", calculator.MsgInvalidNumbers)
		return 1
	}

	client, err := calculator.NewClient(calculator.Options{
		BaseURL: *baseURL,
		Timeout: nonZero(*timeout, calculator.DefaultTimeout),
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	out, err := client.Calculate(ctx, a, b, fs.Arg(1))
	if err != nil {
		fmt.Fprintln(stdout, "error:", calculator.MsgCalculationFailed)
		return 1
	}

	switch v := out.(type) {
	case calculator.Result:
		fmt.Fprintln(stdout, "result:", calculator.FormatNumber(v.Value))
		return 0
	case calculator.Failure:
		fmt.Fprintln(stdout, "error:", v.Message)
	}
	return 1
}

func nonZero(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
