// Package telemetry groups Saturn's observability packages: structured
// logging (telemetry/logging) and Prometheus metrics (telemetry/metrics).
package telemetry
