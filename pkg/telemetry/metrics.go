package telemetry

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type eventMetrics struct {
	gauge   *prometheus.GaugeVec
	counter *prometheus.CounterVec
}

// metrics may be initialized while other goroutines are recording
var metrics atomic.Pointer[eventMetrics]

// RecordEventValue is a no-op until InitializeMetrics has been called
func RecordEventValue(name string, tag string, value float64) {
	m := metrics.Load()
	if m == nil {
		return
	}
	m.gauge.With(prometheus.Labels{
		"name": name,
		"tag":  tag,
	}).Set(value)
}

// RecordEvent is a no-op until InitializeMetrics has been called
func RecordEvent(name string, tag string, err error) {
	m := metrics.Load()
	if m == nil {
		return
	}
	m.counter.With(prometheus.Labels{
		"name":    name,
		"tag":     tag,
		"isError": fmt.Sprintf("%t", err != nil),
	}).Inc()
}

func InitializeMetrics(subsystem string, registerer prometheus.Registerer) error {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "scan_utils",
		Subsystem: subsystem,
		Name:      "event_gauge",
		Help:      "last value reported for an event",
	}, []string{"name", "tag"})
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scan_utils",
		Subsystem: subsystem,
		Name:      "event_counter",
		Help:      "number of occurrences of an event, split by whether it failed",
	}, []string{"name", "tag", "isError"})

	for _, collector := range []prometheus.Collector{gauge, counter} {
		if err := registerer.Register(collector); err != nil {
			return err
		}
	}
	metrics.Store(&eventMetrics{gauge: gauge, counter: counter})
	return nil
}

func ServeMetrics(addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		gatherer,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))
	go func() {
		logrus.Infof("serving metrics on %s", addr)
		logrus.Fatal(http.ListenAndServe(addr, mux))
	}()
}
