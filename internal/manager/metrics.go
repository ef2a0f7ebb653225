package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	modelLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gemmad",
		Name:      "model_loaded",
		Help:      "1 when the model and processor are loaded, 0 otherwise",
	})

	loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gemmad",
			Name:      "load_duration_seconds",
			Help:      "Duration of the startup load in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"outcome"},
	)

	generateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gemmad",
			Name:      "generate_duration_seconds",
			Help:      "Duration of generation calls in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	generateTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gemmad",
			Name:      "generate_tokens_total",
			Help:      "Tokens consumed and produced by generation",
		},
		[]string{"kind"},
	)

	admissionQueueLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gemmad",
		Name:      "admission_queue_length",
		Help:      "Requests holding an admission queue slot",
	})
)

func init() {
	prometheus.MustRegister(modelLoaded, loadDuration, generateDuration, generateTokens, admissionQueueLength)
}
