package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"clayout/internal/driver"
	"clayout/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// runWithUI executes req while a progress view follows its events. The view
// exits when the run closes the event channel.
func runWithUI(ctx context.Context, title string, inputs []string, req *driver.Request) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcome := make(chan runOutcome, 1)

	go func() {
		r := *req
		r.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Run(ctx, &r)
		outcome <- runOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, inputs, events), tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// keep draining so the run never blocks on a full channel
	for range events {
	}
	out := <-outcome
	if out.err != nil {
		return out.result, out.err
	}
	return out.result, uiErr
}
