// Package otel bridges gatekeeper metrics into an OpenTelemetry meter.
// Counters and histogram buckets are registered as observable instruments
// backed by snapshots of the engine's atomic counters.
package otel
