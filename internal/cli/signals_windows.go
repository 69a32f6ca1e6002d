//go:build windows

package cli

import "os"

var wakeSignals []os.Signal

var stopSignals = []os.Signal{os.Interrupt}
