package observability

import "go.opentelemetry.io/otel"

// Tracer is the shared tracer for engine operations. The host process decides
// which trace provider (if any) is registered globally; without one, spans
// are no-ops.
var Tracer = otel.Tracer("crossref/engine")
