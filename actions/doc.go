// Package actions adapts the GitHub Actions runtime to the interfaces the
// secrets pipeline depends on: inputs, value masking, environment export,
// OIDC identity tokens, the workspace root and failure reporting.
package actions
