//go:build darwin

package rotor

func newPlatformWakeSignal() (wakeSignal, error) {
	return newPipeSignal()
}
