package xray

import (
	"runtime"

	"github.com/go-logr/logr"
)

type options struct {
	logger  logr.Logger
	workers int
}

// Option configures a [Simulator] or [Solver].
type Option func(*options)

// WithLogger sets the logger. Debug output uses V(1).
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWorkers bounds the number of sweep steps evaluated concurrently.
// Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) options {
	o := options{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
