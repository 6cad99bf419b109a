// Package metrics provides Prometheus metrics collection for Loom.
//
// # Metrics
//
// With the default namespace "loom":
//
//	loom_completions_total{backend,status}            dispatched completions
//	loom_backend_latency_seconds{backend,model}       backend call latency
//	loom_backend_errors_total{backend,error_type}     backend failures by kind
//	loom_backend_health{backend}                      1 healthy, 0 unhealthy
//	loom_completion_tokens_total{backend,model,type}  usage reported by backends
//	loom_prompt_tokens                                estimated prompt size
//	loom_fitted_messages                              messages kept by the fitter
//	loom_http_requests_total{method,route,status}     inbound HTTP requests
//	loom_http_request_duration_seconds{method,route}  inbound request latency
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordCompletion("mancer", "success")
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil *Collector is valid and records nothing, so components can take an
// optional collector without branching.
//
// # Cardinality
//
// Model names come from stored connections and are not bounded. The
// collector caps distinct label sets and folds the excess into "other".
package metrics
