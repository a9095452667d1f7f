//go:build linux

package rotor

func newPlatformWakeSignal() (wakeSignal, error) {
	return newEventfdSignal()
}
