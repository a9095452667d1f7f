package rotor

// fakeWakeSignal is a no-op wakeSignal for tests that need a notifyChannel
// without a real eventfd/self-pipe behind it.
type fakeWakeSignal struct {
	signalCount int
}

func (f *fakeWakeSignal) signal() error { f.signalCount++; return nil }
func (f *fakeWakeSignal) fd() int       { return -1 }
func (f *fakeWakeSignal) drain()        {}
func (f *fakeWakeSignal) close() error  { return nil }
