//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverService = "org.freedesktop.ScreenSaver"
	screenSaverPath    = "/org/freedesktop/ScreenSaver"
)

// dbusInhibitor uses the freedesktop ScreenSaver inhibit API on the session bus.
type dbusInhibitor struct {
	appName string
	conn    *dbus.Conn
	cookie  uint32
}

func newInhibitor(appName string) inhibitor {
	return &dbusInhibitor{appName: appName}
}

func (inh *dbusInhibitor) inhibit(ctx context.Context, reason string) error {
	if inh.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("%w: session bus: %v", ErrWakeLockUnsupported, err)
		}
		inh.conn = conn
	}

	call := inh.conn.Object(screenSaverService, screenSaverPath).
		CallWithContext(ctx, screenSaverService+".Inhibit", 0, inh.appName, reason)
	if call.Err != nil {
		inh.close()
		return fmt.Errorf("%w: inhibit: %v", ErrWakeLockUnsupported, call.Err)
	}
	if err := call.Store(&inh.cookie); err != nil {
		inh.close()
		return fmt.Errorf("inhibit cookie: %w", err)
	}
	return nil
}

func (inh *dbusInhibitor) uninhibit() error {
	if inh.conn == nil {
		return nil
	}
	defer inh.close()
	call := inh.conn.Object(screenSaverService, screenSaverPath).
		Call(screenSaverService+".UnInhibit", 0, inh.cookie)
	return call.Err
}

func (inh *dbusInhibitor) close() {
	if inh.conn != nil {
		_ = inh.conn.Close()
		inh.conn = nil
	}
}
