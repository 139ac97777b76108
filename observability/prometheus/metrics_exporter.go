package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/openacq/go-acq-scheduler/core"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	streamDurationSeconds *prom.HistogramVec
	runDurationSeconds    *prom.HistogramVec
	runsTotal             *prom.CounterVec
	cancelRequestsTotal   *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "acqsched"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	streamDurationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stream_duration_seconds",
		Help:      "Duration of one stream's acquisition in seconds.",
		Buckets:   buckets,
	}, []string{"category"})
	runDurationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Total wall-clock duration of an acquisition run in seconds.",
		Buckets:   buckets,
	}, []string{"outcome"})
	runsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of finished acquisition runs by outcome.",
	}, []string{"outcome"})
	cancelVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "cancel_requests_total",
		Help:      "Total number of cancellation requests by acceptance.",
	}, []string{"accepted"})

	var err error
	if streamDurationVec, err = registerCollector(reg, streamDurationVec); err != nil {
		return nil, err
	}
	if runDurationVec, err = registerCollector(reg, runDurationVec); err != nil {
		return nil, err
	}
	if runsVec, err = registerCollector(reg, runsVec); err != nil {
		return nil, err
	}
	if cancelVec, err = registerCollector(reg, cancelVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		streamDurationSeconds: streamDurationVec,
		runDurationSeconds:    runDurationVec,
		runsTotal:             runsVec,
		cancelRequestsTotal:   cancelVec,
	}, nil
}

// RecordStreamDuration records one stream's acquisition duration.
func (m *MetricsExporter) RecordStreamDuration(stream string, category core.StreamCategory, duration time.Duration) {
	if m == nil {
		return
	}
	m.streamDurationSeconds.WithLabelValues(category.String()).Observe(duration.Seconds())
}

// RecordRunOutcome records a finished run and its total duration.
func (m *MetricsExporter) RecordRunOutcome(outcome core.RunOutcome, duration time.Duration) {
	if m == nil {
		return
	}
	label := normalizeLabel(string(outcome), "unknown")
	m.runsTotal.WithLabelValues(label).Inc()
	m.runDurationSeconds.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordCancelRequest records a cancellation request.
func (m *MetricsExporter) RecordCancelRequest(accepted bool) {
	if m == nil {
		return
	}
	m.cancelRequestsTotal.WithLabelValues(strconv.FormatBool(accepted)).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
