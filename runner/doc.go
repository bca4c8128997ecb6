// Package runner loads the run configuration and executes the secrets
// pipeline: authenticate, fetch, merge, export.
//
// Stages run strictly in sequence and the first failure aborts the run, so a
// failed login never reaches the fetch and a failed fetch never exports.
// Every stage is wrapped by observe.Middleware for spans, metrics and a log
// line.
package runner
