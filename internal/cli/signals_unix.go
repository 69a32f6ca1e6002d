//go:build !windows

package cli

import (
	"os"
	"syscall"
)

// wakeSignals are delivered when the process resumes from a stop, which is
// the terminal's equivalent of a window becoming visible again.
var wakeSignals = []os.Signal{syscall.SIGCONT}

var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
