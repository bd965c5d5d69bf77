package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func metricWithLabels(family *dto.MetricFamily, want map[string]string) *dto.Metric {
	if family == nil {
		return nil
	}
	for _, metric := range family.GetMetric() {
		labels := map[string]string{}
		for _, pair := range metric.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		matches := true
		for k, v := range want {
			if labels[k] != v {
				matches = false
				break
			}
		}
		if matches {
			return metric
		}
	}
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, job, outcome string) float64 {
	t.Helper()
	metric := metricWithLabels(gatherFamily(t, reg, name), map[string]string{"job": job, "outcome": outcome})
	if metric == nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

func histogramCount(t *testing.T, reg *prometheus.Registry, name, job string) uint64 {
	t.Helper()
	metric := metricWithLabels(gatherFamily(t, reg, name), map[string]string{"job": job})
	if metric == nil {
		return 0
	}
	return metric.GetHistogram().GetSampleCount()
}

func TestJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.Observe("outbox-retention", 250*time.Millisecond)
	m.Success("outbox-retention")
	m.Success("outbox-retention")
	m.Failure("day-stock-cleanup")

	if got := counterValue(t, reg, "lcdt_cron_job_runs_total", "outbox-retention", "success"); got != 2 {
		t.Fatalf("success count = %v, want 2", got)
	}
	if got := counterValue(t, reg, "lcdt_cron_job_runs_total", "day-stock-cleanup", "failure"); got != 1 {
		t.Fatalf("failure count = %v, want 1", got)
	}
	if got := histogramCount(t, reg, "lcdt_cron_job_run_seconds", "outbox-retention"); got != 1 {
		t.Fatalf("histogram sample count = %v, want 1", got)
	}
}

func TestJobMetricsEmptyJobNameFallsBack(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)

	m.Success("")
	if got := counterValue(t, reg, "lcdt_cron_job_runs_total", "unknown", "success"); got != 1 {
		t.Fatalf("unknown-label count = %v, want 1", got)
	}
}

func TestJobMetricsNilSafe(t *testing.T) {
	var m *JobMetrics
	m.Observe("x", time.Second)
	m.Success("x")
	m.Failure("x")

	unregistered := NewJobMetrics(nil)
	unregistered.Observe("x", time.Second)
	unregistered.Success("x")
}
