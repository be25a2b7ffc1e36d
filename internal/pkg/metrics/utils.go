package metrics

import "github.com/prometheus/client_golang/prometheus"

//Register adds a metric to the default prometheus registry.
//An already registered collector is replaced, so service data can be
//rebuilt repeatedly in tests
func Register(m prometheus.Collector) error {
	if err := prometheus.Register(m); err != nil {
		prometheus.Unregister(m)
		return prometheus.Register(m)
	}
	return nil
}
