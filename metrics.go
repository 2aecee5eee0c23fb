package visux

import (
	"github.com/prometheus/client_golang/prometheus"
)

var registeredGraphs = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: `visux_graphs`,
	Help: `The number of graphs held by graph managers`,
})

var graphEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: `visux_graph_events_total`,
	Help: `The number of change events delivered to listeners`,
}, []string{`type`})

var visualizeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: `visux_visualize_failures_total`,
	Help: `The number of graphs that could not be turned into a figure`,
}, []string{`reason`})

func init() {
	prometheus.MustRegister(
		registeredGraphs,
		graphEvents,
		visualizeFailures,
	)
}
