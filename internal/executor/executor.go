// Package executor runs script snippets in a freshly spawned interpreter
// process with a wall-clock budget and captures the outcome.
package executor

import (
	"bytes"
	"context"
	"io"
	"math"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Defaults applied when the corresponding Executor field is zero.
const (
	DefaultInterpreter = "python3"
	DefaultTimeout     = 30 * time.Second
)

// maxTimeoutSeconds is the largest budget a time.Duration can hold.
const maxTimeoutSeconds = math.MaxInt64 / int64(time.Second)

// waitDelay bounds how long Wait keeps the output pipes open after the
// child exits or is killed.
const waitDelay = 2 * time.Second

// Executor runs code with an interpreter's inline-program flag (-c).
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	Interpreter    string   // binary resolved via PATH
	Args           []string // placed before -c
	DefaultTimeout time.Duration
	MaxOutput      int // bytes per stream; 0 means unlimited
	Logger         *log.Logger
}

// Execute runs code and waits for it to exit or for timeoutSeconds to
// elapse. A timeoutSeconds <= 0 selects the default budget. Failures are
// reported in the returned Result, never as an error.
//
// Only the time budget ends an execution: cancellation of ctx is ignored
// so that a result is always produced.
func (e *Executor) Execute(ctx context.Context, code string, timeoutSeconds int) *Result {
	if timeoutSeconds <= 0 {
		timeoutSeconds = e.defaultTimeoutSeconds()
	}

	runID := uuid.New().String()
	logger := e.logger().With("run_id", runID)
	logger.Debug("starting execution", "interpreter", e.interpreter(), "timeout", timeoutSeconds, "code_bytes", len(code))

	start := time.Now()
	res := e.run(context.WithoutCancel(ctx), code, timeoutSeconds)
	res.RunID = runID
	res.Duration = time.Since(start)

	switch res.Outcome {
	case SpawnFailed:
		logger.Error("execution failed to start", "detail", res.Detail)
	case TimedOut:
		logger.Warn("execution timed out", "timeout", timeoutSeconds)
	default:
		logger.Info("execution finished", "outcome", res.Outcome, "exit_code", res.ExitCode, "duration", res.Duration)
	}
	if res.Truncated {
		logger.Warn("output truncated", "max_output", e.MaxOutput)
	}
	return res
}

func (e *Executor) run(ctx context.Context, code string, timeoutSeconds int) *Result {
	ctx, cancel := context.WithTimeout(ctx, budget(timeoutSeconds))
	defer cancel()

	argv := e.argv(code)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	isolate(cmd)

	// Cancel is invoked when the budget expires, which may race with the
	// child exiting on its own; budgetExpired settles it from the exit state.
	var killed atomic.Bool
	kill := cmd.Cancel
	cmd.Cancel = func() error {
		killed.Store(true)
		return kill()
	}
	cmd.WaitDelay = waitDelay

	stdout := &limitWriter{limit: e.MaxOutput}
	stderr := &limitWriter{limit: e.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return spawnFailed(argv[0], err)
	}
	waitErr := cmd.Wait()
	reap(cmd)

	if budgetExpired(killed.Load(), cmd.ProcessState) {
		return timedOut(timeoutSeconds)
	}

	if cmd.ProcessState == nil {
		// The child ran but could not be waited on.
		return spawnFailed(argv[0], waitErr)
	}
	// A nil, *exec.ExitError or exec.ErrWaitDelay error all leave a usable
	// ProcessState; the exit status is taken from it.
	exitCode := exitStatus(cmd.ProcessState)

	var res *Result
	if exitCode == 0 {
		res = completed(stdout.String(), stderr.String())
	} else {
		res = scriptFailed(exitCode, stdout.String(), stderr.String())
	}
	res.Truncated = stdout.truncated || stderr.truncated
	return res
}

// budget converts a positive number of seconds to a duration, clamping
// values that would overflow.
func budget(seconds int) time.Duration {
	if int64(seconds) > maxTimeoutSeconds {
		return time.Duration(maxTimeoutSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// budgetExpired reports whether the child was reclaimed by the budget kill
// rather than exiting on its own just before it.
func budgetExpired(killed bool, state *os.ProcessState) bool {
	if !killed {
		return false
	}
	return state == nil || killedBySignal(state)
}

func (e *Executor) argv(code string) []string {
	argv := make([]string, 0, len(e.Args)+3)
	argv = append(argv, e.interpreter())
	argv = append(argv, e.Args...)
	return append(argv, "-c", code)
}

func (e *Executor) interpreter() string {
	if e.Interpreter != "" {
		return e.Interpreter
	}
	return DefaultInterpreter
}

func (e *Executor) defaultTimeoutSeconds() int {
	d := e.DefaultTimeout
	if d <= 0 {
		d = DefaultTimeout
	}
	if s := int(d / time.Second); s > 0 {
		return s
	}
	return 1
}

func (e *Executor) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.New(io.Discard)
}

// limitWriter buffers up to limit bytes and silently discards the rest.
// A limit <= 0 buffers everything.
type limitWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	if w.limit <= 0 {
		return w.buf.Write(p)
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.truncated = w.truncated || len(p) > 0
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Report all bytes as consumed to avoid short write errors from io.Copy.
		w.buf.Write(p[:remaining])
		w.truncated = true
		return len(p), nil
	}
	return w.buf.Write(p)
}

func (w *limitWriter) String() string {
	return w.buf.String()
}
