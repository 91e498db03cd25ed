// Package health provides liveness and readiness checks for the query
// pipeline and HTTP handlers exposing them.
//
// Component checks are registered by name and run with a per-check
// timeout; readiness degrades when any component fails. Built-in
// constructors cover the common components: the warehouse and evidence
// databases, the metric catalog, and the optional remote policy and
// lineage endpoints.
package health
