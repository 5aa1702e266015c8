package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtc-cli/wtc/internal/aggregator"
	"github.com/wtc-cli/wtc/internal/display"
	"github.com/wtc-cli/wtc/internal/launcher"
	"github.com/wtc-cli/wtc/internal/view"
)

// State is a phase of the refresh loop
type State int

const (
	StateFetching State = iota
	StateDisplaying
	StateAwaitingInput
	StateSleeping
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDisplaying:
		return "displaying"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateSleeping:
		return "sleeping"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	hintOpen = "press enter to refresh or enter a entry number to open the check in the web browser:"
	hintShow = "press enter to refresh or enter a entry number to show the URL of the check:"
)

// Aggregator produces the merged notifications for one cycle
type Aggregator interface {
	Aggregate(ctx context.Context) (aggregator.Result, error)
}

// Screen is the presentation boundary
type Screen interface {
	Show(f display.Frame) error
	Prompt(hint string) error
	ShowURL(url string) error
}

// Options controls the loop
type Options struct {
	Watch         bool
	WatchInterval time.Duration
	OneTime       bool
	ShowURLs      bool
	Filter        *regexp.Regexp
	Limit         int
	Location      *time.Location
}

// Controller runs fetch/display/input cycles until the operator quits, the
// context is cancelled or a fetch fails.
type Controller struct {
	agg    Aggregator
	screen Screen
	opener launcher.Opener
	input  *lineReader
	opts   Options
	logger zerolog.Logger
	now    func() time.Time

	current   view.View
	failed    []aggregator.SourceFailure
	lastShown time.Time
	cycles    int
}

// New creates a controller reading operator input from in
func New(agg Aggregator, screen Screen, opener launcher.Opener, in io.Reader, opts Options, logger zerolog.Logger) *Controller {
	if opts.WatchInterval <= 0 {
		opts.WatchInterval = 120 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Controller{
		agg:    agg,
		screen: screen,
		opener: opener,
		input:  newLineReader(in),
		opts:   opts,
		logger: logger.With().Str("component", "controller").Logger(),
		now:    time.Now,
	}
}

// Cycles returns how many fetch cycles completed
func (c *Controller) Cycles() int {
	return c.cycles
}

// View returns the view shown by the last cycle
func (c *Controller) View() view.View {
	return c.current
}

// Run drives the loop. It returns nil when the operator quits, one-shot mode
// finishes or ctx is cancelled, and the fetch error otherwise.
func (c *Controller) Run(ctx context.Context) error {
	state := StateFetching
	for state != StateTerminated {
		if ctx.Err() != nil {
			c.logger.Debug().Str("state", state.String()).Msg("Interrupted")
			return nil
		}

		next, err := c.step(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.logger.Debug().
			Str("from", state.String()).
			Str("to", next.String()).
			Msg("State transition")
		state = next
	}
	return nil
}

func (c *Controller) step(ctx context.Context, state State) (State, error) {
	switch state {
	case StateFetching:
		return c.fetch(ctx)
	case StateDisplaying:
		return c.display()
	case StateAwaitingInput:
		return c.awaitInput(ctx)
	case StateSleeping:
		return c.sleep(ctx)
	default:
		return StateTerminated, fmt.Errorf("unknown state %s", state)
	}
}

func (c *Controller) fetch(ctx context.Context) (State, error) {
	res, err := c.agg.Aggregate(ctx)
	if err != nil {
		return StateTerminated, err
	}
	c.current = view.Project(res.Notifications, c.opts.Filter, c.opts.Limit)
	c.failed = res.Failed
	c.cycles++
	return StateDisplaying, nil
}

func (c *Controller) display() (State, error) {
	frame := display.Frame{
		Rows:  c.current.Rows(c.opts.Location),
		Since: c.lastShown,
	}
	for _, f := range c.failed {
		frame.Warnings = append(frame.Warnings, fmt.Sprintf("%s skipped: %v", f.Source, f.Err))
	}
	if err := c.screen.Show(frame); err != nil {
		return StateTerminated, fmt.Errorf("render: %w", err)
	}
	c.lastShown = c.now()

	switch {
	case c.opts.Watch:
		return StateSleeping, nil
	case c.opts.OneTime:
		return StateTerminated, nil
	default:
		return StateAwaitingInput, nil
	}
}

func (c *Controller) sleep(ctx context.Context) (State, error) {
	timer := time.NewTimer(c.opts.WatchInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return StateTerminated, nil
	case <-timer.C:
		return StateFetching, nil
	}
}

func (c *Controller) awaitInput(ctx context.Context) (State, error) {
	hint := hintOpen
	if c.opts.ShowURLs {
		hint = hintShow
	}
	if err := c.screen.Prompt(hint); err != nil {
		return StateTerminated, fmt.Errorf("prompt: %w", err)
	}

	line, err := c.readLine(ctx)
	if err != nil {
		return StateTerminated, err
	}

	action, index := ParseInput(line)
	switch action {
	case ActionQuit:
		return StateTerminated, nil
	case ActionRefresh:
		return StateFetching, nil
	}

	rec, ok := c.current.Select(index)
	if !ok {
		c.logger.Debug().Int("index", index).Int("shown", c.current.Len()).Msg("Selection out of range")
		return StateFetching, nil
	}

	if c.opts.ShowURLs {
		if err := c.screen.ShowURL(rec.URL); err != nil {
			return StateTerminated, fmt.Errorf("show url: %w", err)
		}
		line, err := c.readLine(ctx)
		if err != nil {
			return StateTerminated, err
		}
		if action, _ := ParseInput(line); action == ActionQuit {
			return StateTerminated, nil
		}
		return StateFetching, nil
	}

	if err := c.opener.Open(ctx, rec.URL); err != nil {
		c.logger.Warn().Err(err).Str("url", rec.URL).Msg("Failed to open browser")
	}
	return StateFetching, nil
}

// readLine maps end of input to a clean quit
func (c *Controller) readLine(ctx context.Context) (string, error) {
	line, err := c.input.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return "q", nil
	}
	return line, err
}

// ExitCode maps the result of Run to a process exit status
func ExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}
