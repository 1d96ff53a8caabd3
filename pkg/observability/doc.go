/*
Package observability provides tools for monitoring the slot-filling engine.

It turns the engine's lifecycle hooks into Prometheus metrics and structured audit logs, and
offers a helper to chain several hook sets into one.
*/
package observability
