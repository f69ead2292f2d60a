package probes

import (
	"testing"
	"time"
)

func waitDone(t *testing.T, h interface{ ExitStatus() (int, bool) }) (int, bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if status, done := h.ExitStatus(); done {
			return status, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return 0, false
}

func TestCommandStartAndExitStatus(t *testing.T) {
	h, err := (Command{}).Start([]string{"/bin/sh", "-c", "exit 3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, done := waitDone(t, h)
	if !done {
		t.Fatal("expected the program to exit within the deadline")
	}
	if status != 3 {
		t.Errorf("expected exit status 3, got %d", status)
	}
}

func TestCommandReadStdoutAndStderr(t *testing.T) {
	h, err := (Command{}).Start([]string{"/bin/sh", "-c", "echo out; echo err 1>&2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, done := waitDone(t, h); !done {
		t.Fatal("expected the program to exit within the deadline")
	}

	stdout, _ := h.ReadStdout(1024)
	stderr, _ := h.ReadStderr(1024)
	if string(stdout) != "out\n" {
		t.Errorf("expected stdout %q, got %q", "out\n", stdout)
	}
	if string(stderr) != "err\n" {
		t.Errorf("expected stderr %q, got %q", "err\n", stderr)
	}
}

func TestCommandReadCappedTruncates(t *testing.T) {
	h, err := (Command{}).Start([]string{"/bin/sh", "-c", "echo 0123456789"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, done := waitDone(t, h); !done {
		t.Fatal("expected the program to exit within the deadline")
	}
	stdout, _ := h.ReadStdout(4)
	if string(stdout) != "0123" {
		t.Errorf("expected stdout capped to 4 bytes, got %q", stdout)
	}
}

func TestCommandKill(t *testing.T) {
	h, err := (Command{}).Start([]string{"/bin/sh", "-c", "sleep 30"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, done := h.ExitStatus(); done {
		t.Fatal("a freshly started long-running program should not report done yet")
	}
	if err := h.Kill(); err != nil {
		t.Fatalf("unexpected error killing the program: %v", err)
	}
	if err := h.WaitFor(); err == nil {
		t.Error("WaitFor should surface the kill signal as a non-nil error")
	}
}

func TestCommandStartEmptyArgv(t *testing.T) {
	if _, err := (Command{}).Start(nil); err == nil {
		t.Fatal("expected an error starting an empty command")
	}
}
