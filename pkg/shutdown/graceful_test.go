package shutdown_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"noted/pkg/shutdown"
)

func sendTermSignal(t *testing.T) {
	t.Helper()

	process, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("Failed to find process: %v", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("Failed to send signal: %v", err)
	}
}

func TestWaitExecutesHooks(t *testing.T) {
	hook1Called := make(chan struct{})
	hook2Called := make(chan struct{})

	go func() {
		shutdown.Wait(time.Second,
			func(context.Context) error {
				close(hook1Called)
				return nil
			},
			func(context.Context) error {
				close(hook2Called)
				return nil
			},
		)
	}()

	time.Sleep(100 * time.Millisecond)
	sendTermSignal(t)

	select {
	case <-hook1Called:
	case <-time.After(2 * time.Second):
		t.Error("Hook 1 was not called")
	}

	select {
	case <-hook2Called:
	case <-time.After(2 * time.Second):
		t.Error("Hook 2 was not called")
	}
}

func TestWaitRespectsTimeout(t *testing.T) {
	waitDone := make(chan struct{})

	go func() {
		shutdown.Wait(100*time.Millisecond, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		close(waitDone)
	}()

	time.Sleep(100 * time.Millisecond)
	sendTermSignal(t)

	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Error("Wait did not return after the timeout expired")
	}
}
