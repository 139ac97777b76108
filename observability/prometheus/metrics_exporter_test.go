package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/openacq/go-acq-scheduler/core"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("acqsched", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordStreamDuration("fluo-red", core.CategoryFluorescence, 250*time.Millisecond)
	exporter.RecordRunOutcome(core.OutcomePartial, 2*time.Second)
	exporter.RecordCancelRequest(true)
	exporter.RecordCancelRequest(false)

	runs := testutil.ToFloat64(exporter.runsTotal.WithLabelValues("partial"))
	if runs != 1 {
		t.Fatalf("runs total = %v, want 1", runs)
	}

	accepted := testutil.ToFloat64(exporter.cancelRequestsTotal.WithLabelValues("true"))
	if accepted != 1 {
		t.Fatalf("accepted cancel total = %v, want 1", accepted)
	}
	refused := testutil.ToFloat64(exporter.cancelRequestsTotal.WithLabelValues("false"))
	if refused != 1 {
		t.Fatalf("refused cancel total = %v, want 1", refused)
	}

	streamCount, err := histogramSampleCount(exporter.streamDurationSeconds.WithLabelValues("fluorescence"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if streamCount != 1 {
		t.Fatalf("stream duration sample count = %d, want 1", streamCount)
	}

	runCount, err := histogramSampleCount(exporter.runDurationSeconds.WithLabelValues("partial"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if runCount != 1 {
		t.Fatalf("run duration sample count = %d, want 1", runCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("acqsched", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("acqsched", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordRunOutcome(core.OutcomeCompleted, time.Second)
	second.RecordRunOutcome(core.OutcomeCompleted, time.Second)

	got := testutil.ToFloat64(first.runsTotal.WithLabelValues("completed"))
	if got != 2 {
		t.Fatalf("shared runs counter = %v, want 2", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
