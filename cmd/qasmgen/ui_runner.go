package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qasmgen/internal/driver"
	"qasmgen/internal/ui"
)

type exportOutcome struct {
	result driver.ExportResult
	err    error
}

func runExportWithUI(ctx context.Context, title string, req *driver.ExportRequest) (driver.ExportResult, error) {
	if req == nil {
		return driver.ExportResult{}, fmt.Errorf("missing export request")
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan exportOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.ExportFiles(ctx, &reqCopy)
		outcomeCh <- exportOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the export from blocking on a channel nobody reads.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
