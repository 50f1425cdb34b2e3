// Package telemetry records correction and rearrangement outcomes as
// Prometheus metrics and renders them in the text exposition format.
package telemetry

import (
	"fmt"
	"io"

	"github.com/katalvlaran/vcs/equil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Label names shared by the collectors below.
const (
	// StatusLabel carries CorrectionStatus.String().
	StatusLabel = "status"
	// StageLabel carries the name of the stage that ended a correction.
	StageLabel = "stage"
	// WhenLabel is "before" or "after" on the discrepancy histogram.
	WhenLabel = "when"
)

// Recorder owns the equil metrics. Its methods are safe for concurrent use.
type Recorder struct {
	corrections *prometheus.CounterVec
	stages      *prometheus.CounterVec
	norm        *prometheus.HistogramVec
	swaps       prometheus.Counter
	rejected    prometheus.Counter
}

// NewRecorder creates the metrics and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		corrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equil_corrections_total",
				Help: "Monotonic count of abundance corrections by outcome",
			},
			[]string{StatusLabel},
		),
		stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equil_correction_stage_total",
				Help: "Monotonic count of corrections resolved (or failed) in each stage",
			},
			[]string{StageLabel},
		),
		norm: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "equil_discrepancy_norm",
				Help:    "RMS abundance discrepancy before and after a correction",
				Buckets: prometheus.ExponentialBuckets(1e-14, 100, 10),
			},
			[]string{WhenLabel},
		),
		swaps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "equil_rearrange_swaps_total",
				Help: "Monotonic count of constraint position switches made while rearranging",
			},
		),
		rejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "equil_rearrange_rejected_total",
				Help: "Monotonic count of constraints rejected as linearly dependent",
			},
		),
	}

	for _, c := range []prometheus.Collector{r.corrections, r.stages, r.norm, r.swaps, r.rejected} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
	}
	return r, nil
}

// ObserveCorrection records one CorrectAbundances outcome.
func (r *Recorder) ObserveCorrection(rep equil.CorrectionReport) {
	r.corrections.WithLabelValues(rep.Status.String()).Inc()
	if rep.Stage != "" {
		r.stages.WithLabelValues(rep.Stage).Inc()
	}
	r.norm.WithLabelValues("before").Observe(rep.NormBefore)
	r.norm.WithLabelValues("after").Observe(rep.NormAfter)
}

// ObserveRearrange records one RearrangeConstraints outcome.
func (r *Recorder) ObserveRearrange(rep equil.RearrangeReport) {
	r.swaps.Add(float64(len(rep.Swaps)))
	r.rejected.Add(float64(len(rep.Rejected)))
}

// WriteText gathers g and writes every family in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("telemetry: gather: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err = enc.Encode(mf); err != nil {
			return fmt.Errorf("telemetry: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile writes g to path atomically, for a node-exporter textfile
// collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}
