//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sys/windows"
)

const (
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
	esContinuous      = 0x80000000
)

var procSetThreadExecutionState = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetThreadExecutionState")

// executionStateInhibitor pins a goroutine to one OS thread, since the
// execution state belongs to the thread that set it.
type executionStateInhibitor struct {
	stop chan struct{}
	done chan struct{}
}

func newInhibitor(string) inhibitor {
	return &executionStateInhibitor{}
}

func (inh *executionStateInhibitor) inhibit(ctx context.Context, _ string) error {
	if err := procSetThreadExecutionState.Find(); err != nil {
		return fmt.Errorf("%w: %v", ErrWakeLockUnsupported, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	started := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		result, _, err := procSetThreadExecutionState.Call(uintptr(esContinuous | esDisplayRequired | esSystemRequired))
		if result == 0 {
			started <- fmt.Errorf("SetThreadExecutionState: %w", err)
			return
		}
		started <- nil
		<-stop
		_, _, _ = procSetThreadExecutionState.Call(uintptr(esContinuous))
	}()

	select {
	case err := <-started:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		close(stop)
		return ctx.Err()
	}
	inh.stop = stop
	inh.done = done
	return nil
}

func (inh *executionStateInhibitor) uninhibit() error {
	if inh.stop == nil {
		return nil
	}
	close(inh.stop)
	<-inh.done
	inh.stop = nil
	inh.done = nil
	return nil
}
