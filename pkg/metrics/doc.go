// Package metrics defines Prometheus metrics for ghc device logins, covering
// attempts, token poll results, terminal outcomes and credential writes.
package metrics
