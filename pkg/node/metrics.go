package node

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	messages     *prometheus.CounterVec
	items        *prometheus.CounterVec
	forwarded    prometheus.Counter
	outputErrors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineprotocol_messages_total",
			Help: "Messages handled, by result.",
		}, []string{"result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineprotocol_items_total",
			Help: "Payload items handled, by what was done with them.",
		}, []string{"action"}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lineprotocol_points_forwarded_total",
			Help: "Points handed to the configured outputs.",
		}),
		outputErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lineprotocol_output_errors_total",
			Help: "Failed output writes, by output type.",
		}, []string{"output"}),
	}
	if reg != nil {
		reg.MustRegister(m.messages, m.items, m.forwarded, m.outputErrors)
	}
	return m
}
