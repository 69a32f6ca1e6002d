//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// caffeinateInhibitor holds a caffeinate -d process tied to our pid.
type caffeinateInhibitor struct {
	cmd *exec.Cmd
}

func newInhibitor(string) inhibitor {
	return &caffeinateInhibitor{}
}

func (inh *caffeinateInhibitor) inhibit(_ context.Context, _ string) error {
	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWakeLockUnsupported, err)
	}
	cmd := exec.Command(path, "-d", "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start caffeinate: %w", err)
	}
	inh.cmd = cmd
	return nil
}

func (inh *caffeinateInhibitor) uninhibit() error {
	if inh.cmd == nil || inh.cmd.Process == nil {
		return nil
	}
	cmd := inh.cmd
	inh.cmd = nil
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop caffeinate: %w", err)
	}
	_ = cmd.Wait()
	return nil
}
