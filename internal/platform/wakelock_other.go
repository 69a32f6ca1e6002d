//go:build !linux && !darwin && !windows

package platform

import "context"

type unsupportedInhibitor struct{}

func newInhibitor(string) inhibitor {
	return unsupportedInhibitor{}
}

func (unsupportedInhibitor) inhibit(context.Context, string) error {
	return ErrWakeLockUnsupported
}

func (unsupportedInhibitor) uninhibit() error {
	return nil
}
