// Package telemetry wires OpenTelemetry and Prometheus instrumentation for the
// elucidation client.
//
// SetupProvider installs a process-wide OTLP trace provider for applications
// that do not already run one. OTelObserver and PrometheusObserver implement
// client.Observer and turn every outcome into counters and latency histograms,
// partitioned by operation and status.
package telemetry
