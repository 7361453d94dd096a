// Package workflow executes declarative publishing flows against a remote
// document session as a step-by-step state machine.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"shortpost/internal/browser"
	"shortpost/internal/logging"
)

// Action is the effect a step applies once its elements are located.
type Action string

const (
	ActionClick       Action = "click"
	ActionType        Action = "type"
	ActionUploadFile  Action = "upload-file"
	ActionWaitPresent Action = "wait-present"
)

// Step is one atomic interaction in a platform's publish sequence. Steps
// are data: the selectors belong to a versioned flow definition, not to the
// driver.
type Step struct {
	Name     string
	Selector string
	Action   Action
	// Input carries the text to type or the file path to attach.
	Input string
	// ElementIndex selects among multiple matches; zero means the first.
	ElementIndex int
	// Humanlike enables the randomized pre-step delay for this step.
	Humanlike bool
	// AwaitConfirmation marks a completion-indicator wait whose timeout is
	// effectively unbounded.
	AwaitConfirmation bool
}

// StateKind enumerates driver states.
type StateKind int

const (
	StateStart StateKind = iota
	StateStepInProgress
	StateAwaitingConfirmation
	StatePublished
	StateFailed
)

// State is the driver's position in the workflow. Owned by one Run call.
type State struct {
	Kind      StateKind
	StepIndex int
	Reason    error
}

// returned when a step's elements never appear within its bounded polls
var ErrElementNotFound = errors.New("element not found")

// StepError reports which step failed and why.
type StepError struct {
	Index int
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Config tunes the driver's waits. The zero value is unusable; use
// DefaultConfig and override.
type Config struct {
	// Humanlike globally enables the per-step randomized delay.
	Humanlike bool
	// HumanlikeMin and HumanlikeMax bound the randomized delay.
	HumanlikeMin time.Duration
	HumanlikeMax time.Duration
	// StepTimeout bounds one poll round for a step's elements.
	StepTimeout time.Duration
	// PollInterval is the sampling period within a poll round.
	PollInterval time.Duration
	// PollRounds is how many poll rounds a step gets before failing.
	PollRounds int
	// RoundPause is the fixed pause between poll rounds.
	RoundPause time.Duration
	// ConfirmTimeout bounds the awaiting-confirmation wait. It is set far
	// beyond any realistic duration on purpose.
	ConfirmTimeout time.Duration

	// Sleep and Rand are injectable for tests; nil selects the real ones.
	Sleep func(context.Context, time.Duration) error
	Rand  func() float64
}

func DefaultConfig() Config {
	return Config{
		Humanlike:      true,
		HumanlikeMin:   time.Second,
		HumanlikeMax:   4 * time.Second,
		StepTimeout:    30 * time.Second,
		PollInterval:   500 * time.Millisecond,
		PollRounds:     3,
		RoundPause:     2 * time.Second,
		ConfirmTimeout: 2400 * time.Hour,
	}
}

// Driver walks a session through an ordered step list.
type Driver struct {
	cfg   Config
	log   *logging.Logger
	state State
}

func NewDriver(cfg Config, log *logging.Logger) *Driver {
	if cfg.Sleep == nil {
		cfg.Sleep = realSleep
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Float64
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Driver{cfg: cfg, log: log, state: State{Kind: StateStart}}
}

// State returns the driver's current position.
func (d *Driver) State() State {
	return d.state
}

// Run navigates to url and executes every step strictly in order. The first
// failing step halts the workflow and is reported as a *StepError.
func (d *Driver) Run(ctx context.Context, session browser.Session, url string, steps []Step) error {
	d.state = State{Kind: StateStart}

	if url != "" {
		if err := session.Navigate(ctx, url); err != nil {
			d.state = State{Kind: StateFailed, Reason: err}
			return fmt.Errorf("navigate %s: %w", url, err)
		}
	}

	for i, step := range steps {
		d.state = State{Kind: StateStepInProgress, StepIndex: i}
		if err := d.executeStep(ctx, session, i, step); err != nil {
			d.state = State{Kind: StateFailed, StepIndex: i, Reason: err}
			return err
		}
	}

	d.state = State{Kind: StatePublished}
	return nil
}

func (d *Driver) executeStep(ctx context.Context, session browser.Session, index int, step Step) error {
	if d.cfg.Humanlike && step.Humanlike {
		if err := d.humanlikeDelay(ctx); err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
	}

	if step.AwaitConfirmation {
		d.state = State{Kind: StateAwaitingConfirmation, StepIndex: index}
	}

	elems, err := d.await(ctx, session, step)
	if err != nil {
		return &StepError{Index: index, Name: step.Name, Err: err}
	}

	d.log.Debugw("step located",
		"step", step.Name,
		"index", index,
		"matches", len(elems),
	)

	switch step.Action {
	case ActionWaitPresent:
		return nil
	case ActionClick:
		el, err := pick(elems, step.ElementIndex)
		if err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
		if err := el.Click(ctx); err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
	case ActionType:
		el, err := pick(elems, step.ElementIndex)
		if err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
		if err := el.Type(ctx, step.Input); err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
	case ActionUploadFile:
		el, err := pick(elems, step.ElementIndex)
		if err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
		if err := el.SetFiles(ctx, step.Input); err != nil {
			return &StepError{Index: index, Name: step.Name, Err: err}
		}
	default:
		return &StepError{Index: index, Name: step.Name, Err: fmt.Errorf("unknown action %q", step.Action)}
	}

	return nil
}

// await polls for the step's elements: up to PollRounds bounded rounds with
// a fixed pause in between, then ErrElementNotFound.
func (d *Driver) await(ctx context.Context, session browser.Session, step Step) ([]browser.Element, error) {
	timeout := d.cfg.StepTimeout
	if step.AwaitConfirmation {
		timeout = d.cfg.ConfirmTimeout
	}

	for round := 0; round < d.cfg.PollRounds; round++ {
		if round > 0 {
			if err := d.cfg.Sleep(ctx, d.cfg.RoundPause); err != nil {
				return nil, err
			}
		}

		elems, err := d.pollOnce(ctx, session, step.Selector, timeout)
		if err != nil {
			return nil, err
		}
		if len(elems) > 0 {
			return elems, nil
		}
	}

	return nil, ErrElementNotFound
}

// pollOnce samples the selector every PollInterval until it matches or the
// round's sample budget (timeout / PollInterval) is spent.
func (d *Driver) pollOnce(ctx context.Context, session browser.Session, selector string, timeout time.Duration) ([]browser.Element, error) {
	samples := int(timeout / d.cfg.PollInterval)
	if samples < 1 {
		samples = 1
	}

	for i := 0; i < samples; i++ {
		elems, err := session.Find(ctx, selector)
		if err != nil {
			return nil, err
		}
		if len(elems) > 0 {
			return elems, nil
		}
		if err := d.cfg.Sleep(ctx, d.cfg.PollInterval); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

func (d *Driver) humanlikeDelay(ctx context.Context) error {
	span := d.cfg.HumanlikeMax - d.cfg.HumanlikeMin
	delay := d.cfg.HumanlikeMin + time.Duration(d.cfg.Rand()*float64(span))
	return d.cfg.Sleep(ctx, delay)
}

func pick(elems []browser.Element, index int) (browser.Element, error) {
	if index < 0 || index >= len(elems) {
		return nil, fmt.Errorf("%w: match %d of %d", ErrElementNotFound, index, len(elems))
	}
	return elems[index], nil
}

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
