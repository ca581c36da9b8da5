package chat

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the chat subsystem.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	ChunksTotal *prometheus.CounterVec
	TokensIn    prometheus.Counter
	TokensOut   prometheus.Counter
}

// NewMetrics registers and returns chat metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ward_chat_runs_total",
			Help: "Total chat runs by final status.",
		}, []string{"status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ward_chat_run_duration_seconds",
			Help:    "Duration of chat runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}, []string{"status"}),
		ChunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ward_chat_chunks_total",
			Help: "Total stream chunks forwarded by kind.",
		}, []string{"kind"}),
		TokensIn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ward_chat_tokens_input_total",
			Help: "Total model input tokens consumed.",
		}),
		TokensOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ward_chat_tokens_output_total",
			Help: "Total model output tokens consumed.",
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.ChunksTotal,
		m.TokensIn,
		m.TokensOut,
	)

	return m
}

// Hooks returns pipeline hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnComplete: func(status string, duration float64, usage Usage, textChunks, toolCalls, toolResults int) {
			m.RunsTotal.WithLabelValues(status).Inc()
			m.RunDuration.WithLabelValues(status).Observe(duration)
			m.ChunksTotal.WithLabelValues(KindTextDelta.String()).Add(float64(textChunks))
			m.ChunksTotal.WithLabelValues(KindToolCall.String()).Add(float64(toolCalls))
			m.ChunksTotal.WithLabelValues(KindToolResult.String()).Add(float64(toolResults))
			m.TokensIn.Add(float64(usage.InputTokens))
			m.TokensOut.Add(float64(usage.OutputTokens))
		},
	}
}
