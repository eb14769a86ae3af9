/*
Package observability provides Prometheus instrumentation for validators.

Metrics are registered against a caller-supplied prometheus.Registerer so that
libraries embedding schemata never touch the global registry by accident:

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	v, err := schemata.New(schemata.WithMetrics(metrics))
*/
package observability
