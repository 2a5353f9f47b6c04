//go:build !unix

package executor

import (
	"os"
	"os/exec"
)

func isolate(cmd *exec.Cmd) {}

func reap(cmd *exec.Cmd) {}

func exitStatus(state *os.ProcessState) int {
	return state.ExitCode()
}

// killedBySignal reports whether the child ended without success; the exit
// state does not record a kill on these platforms.
func killedBySignal(state *os.ProcessState) bool {
	return !state.Success()
}
