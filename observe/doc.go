// Package observe provides logging, tracing, and metrics for secrets runs.
//
// Every pipeline stage (authenticate, fetch, merge, export) runs inside
// Middleware, which opens a span, records stage metrics, and writes one log
// line. Loggers scrub two things before anything reaches a sink: fields whose
// key names a credential, and any literal value registered with a Redactor.
package observe
