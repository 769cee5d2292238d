// Package workflow wires the planning domain models to storage.
//
// Each workflow owns the read-decide-write cycle for one aggregate. Every
// status-bearing write goes through a guarded store update that names the
// status the decision was computed from, so concurrent writers race on the
// row itself rather than on stale reads.
package workflow

import (
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/planwellhq/planwell/internal/platform/id"
)

const tracerName = "github.com/planwellhq/planwell/internal/planning/workflow"

type options struct {
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() (string, error)
	newToken func() (string, error)
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zerolog.Nop(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    id.NewID,
		newToken: id.NewToken,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a workflow.
type Option func(*options)

// WithLogger sets the workflow logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the time source. Tests inject fixed clocks here.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the record ID source.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(o *options) { o.newID = newID }
}

// WithTokenGenerator sets the access token source.
func WithTokenGenerator(newToken func() (string, error)) Option {
	return func(o *options) { o.newToken = newToken }
}
