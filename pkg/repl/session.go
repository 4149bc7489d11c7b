// Package repl runs the interactive "Filter Phrase > " prompt loop.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/filterphrase/pkg/filter"
)

// Prompt is written before every read.
const Prompt = "Filter Phrase > "

// State is a position in the session state machine.
type State int

// Session states.
const (
	AwaitingInput State = iota
	Processing
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting-input"
	case Processing:
		return "processing"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Querier ranks a raw prompt line.
type Querier interface {
	Query(ctx context.Context, line string) ([]filter.ScoredResult, error)
}

// Session reads prompt lines and prints the best matches until an empty line or end of input.
type Session struct {
	querier  Querier
	in       *bufio.Reader
	out      io.Writer
	errOut   io.Writer
	errColor *color.Color
	limit    int
	state    State
}

// Option configures a Session.
type Option func(*Session)

// WithLimit overrides the number of results printed per query.
func WithLimit(n int) Option {
	return func(s *Session) {
		s.limit = n
	}
}

// WithColor forces colored error messages on or off.
func WithColor(enabled bool) Option {
	return func(s *Session) {
		if enabled {
			s.errColor.EnableColor()
		} else {
			s.errColor.DisableColor()
		}
	}
}

// New creates a session. Results go to out, syntax errors to errOut.
func New(querier Querier, in io.Reader, out, errOut io.Writer, opts ...Option) *Session {
	s := &Session{
		querier:  querier,
		in:       bufio.NewReader(in),
		out:      out,
		errOut:   errOut,
		errColor: color.New(color.FgRed),
		limit:    filter.DisplayLimit,
		state:    AwaitingInput,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Run loops until the session terminates. End of input is not an error.
func (s *Session) Run(ctx context.Context) error {
	for s.state != Terminated {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			s.state = Terminated

			return ctxErr
		}

		stepErr := s.Step(ctx)
		if stepErr != nil {
			s.state = Terminated

			return stepErr
		}
	}

	return nil
}

// Step performs one prompt, read and print cycle.
func (s *Session) Step(ctx context.Context) error {
	if s.state == Terminated {
		return nil
	}

	_, err := io.WriteString(s.out, Prompt)
	if err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}

	line, eof, err := s.readLine()
	if err != nil {
		return err
	}

	if line == "" {
		s.state = Terminated

		return nil
	}

	s.state = Processing

	processErr := s.process(ctx, line)
	if processErr != nil {
		return processErr
	}

	if eof {
		s.state = Terminated
	} else {
		s.state = AwaitingInput
	}

	return nil
}

func (s *Session) readLine() (string, bool, error) {
	line, err := s.in.ReadString('\n')

	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		return "", false, fmt.Errorf("read prompt: %w", err)
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	return line, eof, nil
}

func (s *Session) process(ctx context.Context, line string) error {
	results, err := s.querier.Query(ctx, line)
	if errors.Is(err, filter.ErrMalformedPrompt) {
		_, writeErr := s.errColor.Fprintln(s.errOut, filter.ErrMalformedPrompt.Error())
		if writeErr != nil {
			return fmt.Errorf("write error message: %w", writeErr)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("query %q: %w", line, err)
	}

	for _, result := range filter.Top(results, s.limit) {
		_, writeErr := fmt.Fprintln(s.out, result.Item)
		if writeErr != nil {
			return fmt.Errorf("write result: %w", writeErr)
		}
	}

	return nil
}
