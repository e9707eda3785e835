package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"qasmgen/internal/trace"
)

func registerTraceFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String("trace", "", "write trace events to file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// traceConfig turns the persistent trace flags into a trace.Config.
// --trace without --trace-level traces phases.
func traceConfig(root *cobra.Command) (trace.Config, error) {
	flags := root.PersistentFlags()
	var (
		cfg                 trace.Config
		level, mode, format string
		err                 error
	)
	for name, dst := range map[string]*string{
		"trace":        &cfg.OutputPath,
		"trace-level":  &level,
		"trace-mode":   &mode,
		"trace-format": &format,
	} {
		if *dst, err = flags.GetString(name); err != nil {
			return cfg, fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	if cfg.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return cfg, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if cfg.Heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return cfg, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if cfg.Level, err = trace.ParseLevel(level); err != nil {
		return cfg, err
	}
	if cfg.Level == trace.LevelOff && cfg.OutputPath != "" && !flags.Changed("trace-level") {
		cfg.Level = trace.LevelPhase
	}
	if cfg.Mode, err = trace.ParseMode(mode); err != nil {
		return cfg, err
	}
	if cfg.Format, err = trace.ParseFormat(format); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupTracing attaches a tracer to the command context and opens the
// driver span for the command. The returned cleanup ends the span and
// closes the tracer.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := traceConfig(cmd.Root())
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	span := trace.Begin(tracer, trace.ScopeDriver, cmd.CommandPath(), 0)
	ctx := trace.WithSpan(trace.WithTracer(cmd.Context(), tracer), span.ID())
	cmd.SetContext(ctx)

	return func() {
		span.End("")
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %v\n", err)
		}
	}, nil
}

// dumpTraceOnPanic writes the ring buffer to stderr before re-panicking, so
// the events leading up to a crash are not lost in ring mode.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	if ring, ok := trace.RingOf(trace.FromContext(cmd.Context())); ok {
		fmt.Fprintln(os.Stderr, "trace: last events before panic:")
		_ = ring.Dump(os.Stderr, trace.FormatText)
	}
	panic(r)
}
