package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts generation and export outcomes.
type Recorder struct {
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	exports            *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modulajar",
			Name:      "generations_total",
			Help:      "Lesson plan generations by result",
		}, []string{"result"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "modulajar",
			Name:      "generation_duration_seconds",
			Help:      "Time spent waiting for the model",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modulajar",
			Name:      "exports_total",
			Help:      "Exports by format and result",
		}, []string{"format", "result"}),
	}
	for _, c := range []prometheus.Collector{r.generations, r.generationDuration, r.exports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveGeneration(result string, d time.Duration) {
	r.generations.WithLabelValues(result).Inc()
	r.generationDuration.Observe(d.Seconds())
}

func (r *Recorder) ObserveExport(format, result string) {
	r.exports.WithLabelValues(format, result).Inc()
}
