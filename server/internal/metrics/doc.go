// Package metrics exposes dashboard counters and gauges in the Prometheus
// text format. Families are assembled as client_model protobufs and encoded
// with expfmt; there is no global registry.
package metrics
