//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Browser tree cleanup
// ---------------------------------------------------------------------------

func TestKillProcessGroup_KillsChildGroup(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sleep: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	KillProcessGroup(cmd.Process.Pid)

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("Wait() = %v, want exit by signal", err)
		}
		status, ok := exitErr.Sys().(syscall.WaitStatus)
		if !ok || !status.Signaled() || status.Signal() != syscall.SIGKILL {
			t.Errorf("process ended with %v, want SIGKILL", exitErr)
		}
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("process group still running after KillProcessGroup")
	}
}

func TestKillProcessGroup_GoneProcess(t *testing.T) {
	t.Parallel()

	// No such group: the call is best effort and must not panic.
	KillProcessGroup(1 << 30)
}
