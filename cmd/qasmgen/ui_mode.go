package main

import (
	"fmt"
	"strings"
)

// progressView is the value of export's --ui flag.
type progressView string

const (
	progressAuto progressView = "auto"
	progressOn   progressView = "on"
	progressOff  progressView = "off"
)

func parseProgressView(value string) (progressView, error) {
	switch v := progressView(strings.ToLower(strings.TrimSpace(value))); v {
	case "":
		return progressAuto, nil
	case progressAuto, progressOn, progressOff:
		return v, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q: want auto, on or off", value)
	}
}

// showProgress reports whether export renders the Bubble Tea progress view.
// Watch mode and --quiet always print plain lines; auto shows the view only
// when stdout is a terminal.
func (opts exportOptions) showProgress(tty bool) bool {
	if opts.watch || opts.quiet {
		return false
	}
	switch opts.ui {
	case progressOn:
		return true
	case progressOff:
		return false
	default:
		return tty
	}
}
