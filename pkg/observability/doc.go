/*
Package observability turns dispatcher lifecycle events into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks values, so they can be combined with
domain.LifecycleHooks.Merge and passed to the engine.
*/
package observability
