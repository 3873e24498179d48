package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

const (
	// ParseErrorsThreshold defines the number of consecutive parse errors allowed
	ParseErrorsThreshold = 5
)

// Handler knows how to run one scanner and read its output
type Handler interface {
	Cmd(ctx context.Context) *exec.Cmd
	Parse(line string, ps survey.PointSample) error
	Name() string
}

// WithLogger sets the logger for the source
func WithLogger(logger *slog.Logger) func(s *CommandSource) {
	return func(s *CommandSource) {
		s.logger = logger.With(slog.String("scanner", s.handler.Name()))
	}
}

// WithParseErrorsThreshold sets the threshold for consecutive parse errors
func WithParseErrorsThreshold(threshold uint8) func(s *CommandSource) {
	return func(s *CommandSource) {
		if threshold > 0 {
			s.parseErrorsThreshold = threshold
		}
	}
}

// WithTimeout bounds the duration of a single scan
func WithTimeout(timeout time.Duration) func(s *CommandSource) {
	return func(s *CommandSource) {
		s.timeout = timeout
	}
}

// CommandSource is a Source backed by an external scanner command, run once
// per sample.
type CommandSource struct {
	handler Handler
	timeout time.Duration

	parseErrorsThreshold uint8
	logger               *slog.Logger
}

// NewCommandSource creates a new CommandSource instance with a discard logger
func NewCommandSource(h Handler, options ...func(s *CommandSource)) *CommandSource {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // nil logger

	s := CommandSource{
		handler:              h,
		logger:               logger,
		parseErrorsThreshold: ParseErrorsThreshold,
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Sample runs the scanner and collects every emitter it reports.
func (s *CommandSource) Sample(ctx context.Context) (survey.PointSample, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cmd := s.handler.Cmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, NewRuntimeError("creating stdout pipe", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, NewRuntimeError("creating stderr pipe", err)
	}

	if err = cmd.Start(); err != nil {
		return nil, NewRuntimeError("starting command", err)
	}

	s.logger.Debug("scanning...")

	ps := make(survey.PointSample)
	done := make(chan error, 2) // expects two results from two goroutines

	go s.handleStdout(stdout, ps, done)
	go s.handleStderr(stderr, done)

	// pipes must be drained before Wait
	var errs []error
	for i := 0; i < cap(done); i++ {
		if err := <-done; err != nil {
			errs = append(errs, err)
		}
	}
	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		errs = append(errs, NewRuntimeError("command exited with error", err))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		s.logger.Error(err.Error())
		return nil, err
	}

	s.logger.Debug("scan complete", slog.Int("emitters", len(ps)))
	return ps, nil
}

// handleStdout reads from stdout and parses measurements into ps.
func (s *CommandSource) handleStdout(stdout io.Reader, ps survey.PointSample, done chan<- error) {
	var parseErrors uint8

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := s.handler.Parse(line, ps); err != nil {
			parseErrors++
			s.logger.Warn(fmt.Sprintf("error parsing scan output: %s", err.Error()), slog.String("line", line))

			if parseErrors >= s.parseErrorsThreshold {
				_, _ = io.Copy(io.Discard, stdout)
				done <- ErrTooManyParseErrors
				return
			}

			continue
		}

		parseErrors = 0 // reset counter
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- NewRuntimeError("reading stdout", err)
		return
	}

	done <- nil
}

// handleStderr reads from stderr and logs it.
func (s *CommandSource) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s.logger.Warn(fmt.Sprintf("%s >> %s", s.handler.Name(), line))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- NewRuntimeError("reading stderr", err)
		return
	}

	done <- nil
}
