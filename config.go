package rotor

// Config bounds a Handler's resource usage (spec §6): slab_capacity caps the
// number of concurrently installed machines, NotifyQueueCapacity bounds the
// cross-thread wakeup backlog before Notifier.Wakeup starts returning
// WakeupErrFull, and Logger is the diagnostic sink every dispatch writes to.
type Config struct {
	// SlabCapacity bounds the number of concurrent machines. Default 4096.
	SlabCapacity int
	// NotifyQueueCapacity bounds the number of pending cross-thread wakeups
	// buffered before Notifier.Wakeup reports WakeupErrFull. Default 1024.
	NotifyQueueCapacity int
	// Logger receives every diagnostic the Handler produces. Defaults to
	// NewStdLogger() when nil.
	Logger Logger
}

// LoopOption configures a Config during [NewLoop]; the functional-option
// shape mirrors the teacher's eventloop options.go.
type LoopOption func(*Config)

// WithSlabCapacity overrides the default slab capacity.
func WithSlabCapacity(n int) LoopOption {
	return func(c *Config) { c.SlabCapacity = n }
}

// WithNotifyQueueCapacity overrides the default notify-queue capacity.
func WithNotifyQueueCapacity(n int) LoopOption {
	return func(c *Config) { c.NotifyQueueCapacity = n }
}

// WithLogger overrides the default diagnostic sink.
func WithLogger(l Logger) LoopOption {
	return func(c *Config) { c.Logger = l }
}

func defaultConfig() Config {
	return Config{
		SlabCapacity:        4096,
		NotifyQueueCapacity: 1024,
		Logger:              NewStdLogger(),
	}
}

func resolveConfig(opts []LoopOption) Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.SlabCapacity <= 0 {
		c.SlabCapacity = 4096
	}
	if c.NotifyQueueCapacity <= 0 {
		c.NotifyQueueCapacity = 1024
	}
	if c.Logger == nil {
		c.Logger = NewStdLogger()
	}
	return c
}
