package hillclimb

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts decoder activity. A nil *Metrics records nothing.
type Metrics struct {
	Runs            prometheus.Counter
	SamplerFailures prometheus.Counter
	CapOverruns     *prometheus.CounterVec
	Improvements    prometheus.Counter
	Updates         prometheus.Counter
	BatchDuration   *prometheus.HistogramVec
}

// NewMetrics creates the decoder metrics and registers them on reg, if
// given. Registering twice on the same registry fails.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "runs_total",
			Help:      "Hill-climbing rounds completed by all workers.",
		}),
		SamplerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "sampler_failures_total",
			Help:      "Random walks that hit the step cap.",
		}),
		CapOverruns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "loop_cap_overruns_total",
			Help:      "Local search loops stopped at their iteration cap.",
		}, []string{"loop"}),
		Improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "best_improvements_total",
			Help:      "Rounds that improved the best score of their batch.",
		}),
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "parameter_updates_total",
			Help:      "Training calls that updated the parameters.",
		}),
		BatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "segyap",
			Subsystem: "hillclimb",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one dispatched batch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"mode"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Runs, m.SamplerFailures, m.CapOverruns, m.Improvements, m.Updates, m.BatchDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) run() {
	if m != nil {
		m.Runs.Inc()
	}
}

func (m *Metrics) samplerFailure() {
	if m != nil {
		m.SamplerFailures.Inc()
	}
}

func (m *Metrics) capOverrun(loop string) {
	if m != nil {
		m.CapOverruns.WithLabelValues(loop).Inc()
	}
}

func (m *Metrics) improvement() {
	if m != nil {
		m.Improvements.Inc()
	}
}

func (m *Metrics) update() {
	if m != nil {
		m.Updates.Inc()
	}
}

func (m *Metrics) observeBatch(mode string, seconds float64) {
	if m != nil {
		m.BatchDuration.WithLabelValues(mode).Observe(seconds)
	}
}
