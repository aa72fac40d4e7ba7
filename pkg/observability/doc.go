/*
Package observability turns Studio lifecycle events into Prometheus metrics
and structured audit logs.

Both are plain domain.LifecycleHooks, so they can be combined with Merge and
passed to blueprint.WithLifecycleHooks or Studio.Observe.
*/
package observability
