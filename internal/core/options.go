package core

import "go.uber.org/zap"

// Option configures a Double or a Scope at construction time.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

func newConfig(opts []Option) config {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithLogger installs a structured logger for debug tracing of queue and
// scope events. The default is a nop logger; verification failures are
// always error values regardless of logging.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
