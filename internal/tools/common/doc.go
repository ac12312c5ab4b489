// Package common provides shared helpers for MCP tool handlers:
// account resolution from the authenticated context or request
// arguments, and an instrumentation wrapper that records tracing,
// metrics and audit log lines per tool invocation.
package common
