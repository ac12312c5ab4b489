// Package instrumentation provides OpenTelemetry instrumentation for the
// workspace-mcp server.
//
// It exposes metrics for HTTP requests, Google API operations, MCP tool
// invocations, per-request identity resolution outcomes
// (auth_resolutions_total by credential source), and SSO token forwarding,
// plus distributed tracing for tool and Google API spans. Metrics are
// exported via Prometheus on a dedicated port by default, with OTLP and
// stdout exporters available.
//
// Configuration comes from environment variables:
//   - INSTRUMENTATION_ENABLED: enable/disable (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: sampling rate (default: 0.1)
//   - OTEL_SERVICE_NAME: service name (default: workspace-mcp)
package instrumentation
