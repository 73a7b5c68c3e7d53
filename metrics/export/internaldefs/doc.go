// Package internaldefs holds the shared metric name and bucket definitions
// used by the exporter packages. It is internal to the exporters and not a
// public API surface.
package internaldefs
