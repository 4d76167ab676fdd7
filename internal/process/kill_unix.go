//go:build !windows

// Package process terminates browser process trees left behind by a PDF engine.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort cleanup; error ignored as launcher.Kill() provides fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
