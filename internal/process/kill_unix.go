//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup on timeout; the tool may already have exited
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Isolate places cmd in its own process group so KillProcessGroup reaches
// the tool's children without touching the parent process.
func Isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
