package output

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// SpinnerOption configures a spinner.
type SpinnerOption func(*spinnerConfig)

type spinnerConfig struct {
	title string
}

// WithTitle sets the spinner title.
func WithTitle(title string) SpinnerOption {
	return func(c *spinnerConfig) {
		c.title = title
	}
}

// RunWithSpinner executes action while a spinner is shown. Without a TTY the
// action runs directly. Returns the action's error.
func RunWithSpinner(ctx context.Context, action func() error, opts ...SpinnerOption) error {
	cfg := &spinnerConfig{title: "Working..."}
	for _, opt := range opts {
		opt(cfg)
	}

	if !IsTTY() {
		return action()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- action()
	}()

	var actionErr error
	spinnerErr := spinner.New().
		Title(cfg.title).
		Context(ctx).
		Action(func() {
			actionErr = <-errCh
		}).
		Run()
	if spinnerErr != nil {
		return fmt.Errorf("spinner error: %w", spinnerErr)
	}
	return actionErr
}
