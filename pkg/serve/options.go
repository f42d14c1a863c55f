//go:build unix

package serve

import (
	"time"

	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/neterr"
)

// Observer is told about every step of the dispatch loop. Methods are called
// from the loop goroutine and from handler goroutines, so implementations
// must be safe for concurrent use.
type Observer interface {
	Accepted()
	AcceptFailed(kind neterr.Kind)
	HandlerStarted()
	HandlerDone(elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Accepted()                 {}
func (nopObserver) AcceptFailed(neterr.Kind)  {}
func (nopObserver) HandlerStarted()           {}
func (nopObserver) HandlerDone(time.Duration) {}

// Option configures ListenAndServe.
type Option func(*options)

type options struct {
	logger   *log.Logger
	observer Observer
}

func newOptions(opts []Option) *options {
	o := &options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger logs connection state to l. Without it the loop is silent.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver reports loop activity to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
