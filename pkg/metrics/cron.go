package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics collects per-job timing and outcome counters for the
// maintenance worker. A nil receiver is a no-op so jobs can run without a
// registry in tests.
type JobMetrics struct {
	runSeconds *prometheus.HistogramVec
	outcomes   *prometheus.CounterVec
}

// NewJobMetrics registers the collectors under the lcdt_cron namespace.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}

	m := &JobMetrics{
		runSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lcdt",
			Subsystem: "cron",
			Name:      "job_run_seconds",
			Help:      "Wall-clock duration of maintenance job runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lcdt",
			Subsystem: "cron",
			Name:      "job_runs_total",
			Help:      "Maintenance job runs by outcome.",
		}, []string{"job", "outcome"}),
	}
	reg.MustRegister(m.runSeconds, m.outcomes)
	return m
}

// Observe records how long the named job ran.
func (m *JobMetrics) Observe(job string, elapsed time.Duration) {
	if m == nil || m.runSeconds == nil {
		return
	}
	m.runSeconds.WithLabelValues(jobLabel(job)).Observe(elapsed.Seconds())
}

// Success counts a clean run of the named job.
func (m *JobMetrics) Success(job string) {
	m.count(job, "success")
}

// Failure counts a failed run of the named job.
func (m *JobMetrics) Failure(job string) {
	m.count(job, "failure")
}

func (m *JobMetrics) count(job, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(jobLabel(job), outcome).Inc()
}

func jobLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
