// Package prometheus renders gatekeeper metrics in the Prometheus text
// exposition format without importing the Prometheus client library. Mount
// the exporter's Handler on a scrape endpoint.
package prometheus
