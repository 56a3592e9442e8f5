// Package bindmetrics exports binding engine activity as Prometheus metrics.
//
// An Observer is attached to cells with binding.WithObserver:
//
//	reg := prometheus.NewRegistry()
//	obs := bindmetrics.New(bindmetrics.WithRegistry(reg))
//
//	total := binding.Computed(func(ctx *binding.Context) int {
//	    return binding.Use(ctx, lives) * 100
//	}, binding.WithName("total"), binding.WithObserver(obs))
//
// Metrics collected (namespace "bindvar" by default):
//   - bindvar_recomputes_total: evaluations by cell and outcome
//   - bindvar_recompute_duration_seconds: evaluation duration by cell
//   - bindvar_recompute_errors_total: failed evaluations by cell and error type
//   - bindvar_recompute_dependencies: dependencies read by the last evaluation
//   - bindvar_listener_calls_total: listener invocations by cell
//   - bindvar_invalidations_total: clean to dirty transitions by cell
//
// Every metric is labelled with the cell name, so names should come from a
// bounded set. Unnamed cells report as "var#<id>".
package bindmetrics
