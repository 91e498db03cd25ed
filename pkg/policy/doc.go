// Package policy implements attribute-based access control for analytics
// queries over sensitive banking data products.
//
// Evaluation maps (user attributes, requested columns, purpose, overrides)
// to a decision of ALLOW, ALLOW_WITH_CONSTRAINTS, or DENY with an attached
// constraint set. The local evaluator is deterministic and side-effect-free;
// an optional remote policy service may be consulted first, with the local
// evaluator as the behaviorally equivalent fallback when the service is
// unreachable.
package policy
