package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Outcome identifies how an execution ended.
type Outcome string

const (
	// Completed means the child exited with status 0.
	Completed Outcome = "completed"
	// ScriptFailed means the child exited within budget with a nonzero status.
	ScriptFailed Outcome = "script_failed"
	// TimedOut means the time budget elapsed and the child was killed.
	TimedOut Outcome = "timed_out"
	// SpawnFailed means the child process could not be created.
	SpawnFailed Outcome = "spawn_failed"
)

// Wire-contract exit codes for executions that did not complete.
const (
	TimeoutExitCode      = -1
	SpawnFailureExitCode = 127
)

// Result is the outcome of a single execution.
type Result struct {
	RunID     string
	Outcome   Outcome
	ExitCode  int
	Stdout    string
	Stderr    string
	Detail    string // failure description; empty when Completed
	Duration  time.Duration
	Truncated bool // true if a stream exceeded the configured cap
}

// Succeeded reports whether the child exited with status 0.
func (r *Result) Succeeded() bool {
	return r.Outcome == Completed
}

func completed(stdout, stderr string) *Result {
	return &Result{Outcome: Completed, Stdout: stdout, Stderr: stderr}
}

func scriptFailed(exitCode int, stdout, stderr string) *Result {
	return &Result{
		Outcome:  ScriptFailed,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Detail:   stderr,
	}
}

func timedOut(seconds int) *Result {
	return &Result{
		Outcome:  TimedOut,
		ExitCode: TimeoutExitCode,
		Detail:   fmt.Sprintf("Execution timed out after %d seconds", seconds),
	}
}

func spawnFailed(name string, err error) *Result {
	return &Result{
		Outcome:  SpawnFailed,
		ExitCode: SpawnFailureExitCode,
		Detail:   fmt.Sprintf("Failed to start %s: %v", name, err),
	}
}

// Report is the flat wire form of a Result.
type Report struct {
	Success    bool    `json:"success"`
	Stdout     string  `json:"stdout"`
	Stderr     string  `json:"stderr"`
	Error      *string `json:"error"`
	ReturnCode int     `json:"return_code"`
}

// Report flattens r into its wire form.
func (r *Result) Report() Report {
	rep := Report{
		Success:    r.Succeeded(),
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
		ReturnCode: r.ExitCode,
	}
	if !rep.Success {
		detail := r.Detail
		rep.Error = &detail
	}
	return rep
}

// JSON renders the report as a single JSON document.
func (rep Report) JSON() string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings, bools and ints cannot fail.
	_ = enc.Encode(rep)
	return strings.TrimSuffix(b.String(), "\n")
}
