package equil

import (
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// DefaultMinorSpeciesCutoff is the mole number below which a species
// clamped by an upper bound is treated as zero.
const DefaultMinorSpeciesCutoff = 1e-140

// Numeric policy of the Checker, Rearranger and Corrector.
const (
	relTol         = 1e-12  // relative to |target|, checked first for every constraint
	multisignTol   = 1e-11  // relative to the largest |coef*moles| of a multisign row
	rankTol        = 1e-6   // squared residual norm below which a row is dependent
	dampFloor      = 0.5    // smallest ratio fed into the damping factor
	dampCeil       = 100.0  // largest ratio fed into the damping factor
	dampSafety     = 0.9999 // applied to a damping factor below 1
	shrinkFactor   = 1e-4   // multi-species components shrink instead of going negative
	adhocFloor     = 1e-10  // floor for a mole number set by the single-species fix
	directionTol   = 1e-10  // |coef*residual| below which a direction is ignored
	electronDevTol = 1e-300 // electron-charge deviation treated as zero
)

// Option configures a Problem.
type Option func(*options)

type options struct {
	logger     logrus.FieldLogger
	solver     LinearSolver
	reinserter Reinserter
	cutoff     float64
	observers  []ConstraintObserver
}

func defaultOptions() options {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return options{
		logger:     l,
		solver:     GonumSolver{},
		reinserter: SwapReinserter,
		cutoff:     DefaultMinorSpeciesCutoff,
	}
}

// WithLogger routes the diagnostics of every operation to l.
// A nil logger keeps the silent default.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSolver selects the linear solver of the damped linear correction.
// A nil solver keeps the default GonumSolver.
func WithSolver(s LinearSolver) Option {
	return func(o *options) {
		if s != nil {
			o.solver = s
		}
	}
}

// WithReinserter sets the hook that moves a non-active species back into
// the active set. A nil hook keeps SwapReinserter.
func WithReinserter(r Reinserter) Option {
	return func(o *options) {
		if r != nil {
			o.reinserter = r
		}
	}
}

// WithMinorSpeciesCutoff overrides DefaultMinorSpeciesCutoff.
// Negative or non-finite values are ignored.
func WithMinorSpeciesCutoff(c float64) Option {
	return func(o *options) {
		if c >= 0 && !math.IsInf(c, 0) && !math.IsNaN(c) {
			o.cutoff = c
		}
	}
}

// WithObserver registers an extra collaborator that must follow every
// constraint position switch.
func WithObserver(obs ConstraintObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}
