// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package restrack

import "log/slog"

// Option configures a Device or Table.
//
// Example:
//
//	dev := restrack.NewDevice(
//	    restrack.WithLogger(slog.Default()),
//	    restrack.WithInitialCapacity(4096),
//	)
type Option func(*options)

type options struct {
	logger   *slog.Logger
	capacity int
}

// DefaultInitialCapacity is the number of resource slots reserved up front.
const DefaultInitialCapacity = 256

func defaultOptions() options {
	return options{capacity: DefaultInitialCapacity}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for this Device or Table instead of the
// package-wide one from SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInitialCapacity reserves room for n resources. Values <= 0 keep the
// default.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// TrackerOption configures a Tracker.
type TrackerOption func(*trackerOptions)

type trackerOptions struct {
	label    string
	capacity int
}

// WithTrackerLabel names the pass in log output.
func WithTrackerLabel(label string) TrackerOption {
	return func(o *trackerOptions) {
		o.label = label
	}
}

// WithCapacityHint sizes the tracker for about n distinct resources per pass.
func WithCapacityHint(n int) TrackerOption {
	return func(o *trackerOptions) {
		if n > 0 {
			o.capacity = n
		}
	}
}
