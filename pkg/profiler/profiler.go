// Package profiler times named operations and reports them through logrus.
package profiler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Profile is the measurement of one operation.
type Profile struct {
	Operation string
	Duration  time.Duration
	Timestamp time.Time
	Items     int
	Bytes     int64
}

// Profiler records operation timings. A disabled profiler still runs the
// profiled functions but neither measures nor logs them.
type Profiler struct {
	logger  logrus.FieldLogger
	enabled bool
}

// New creates a profiler writing to logger.
func New(logger logrus.FieldLogger, enabled bool) *Profiler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Profiler{
		logger:  logger,
		enabled: enabled,
	}
}

// ProfileFunc runs fn and records how long it took.
func (p *Profiler) ProfileFunc(ctx context.Context, operation string, fn func() error) (*Profile, error) {
	return p.ProfileFuncWithMetrics(ctx, operation, func() (int, int64, error) {
		return 0, 0, fn()
	})
}

// ProfileFuncWithMetrics runs fn and records its duration together with the
// item and byte counts it reports.
func (p *Profiler) ProfileFuncWithMetrics(ctx context.Context, operation string, fn func() (int, int64, error)) (*Profile, error) {
	if p == nil || !p.enabled {
		_, _, err := fn()
		return nil, err
	}

	finish := p.Start(ctx, operation)
	items, bytes, err := fn()
	profile := finish(items, bytes)
	if err != nil {
		p.logger.WithField("operation", operation).WithError(err).Debug("profiled operation failed")
	}
	return profile, err
}

// Start begins timing operation. The returned function stops the clock, logs
// the profile and returns it.
func (p *Profiler) Start(_ context.Context, operation string) func(items int, bytes int64) *Profile {
	if p == nil || !p.enabled {
		return func(int, int64) *Profile { return nil }
	}

	start := time.Now()
	return func(items int, bytes int64) *Profile {
		profile := &Profile{
			Operation: operation,
			Duration:  time.Since(start),
			Timestamp: start,
			Items:     items,
			Bytes:     bytes,
		}
		p.logger.WithFields(logrus.Fields{
			"operation":  profile.Operation,
			"durationMs": profile.Duration.Milliseconds(),
			"items":      profile.Items,
			"bytes":      profile.Bytes,
		}).Debug("profile")
		return profile
	}
}
