// Package pipeline sequences one analytics request through the verifiable
// query pipeline: plan building, policy evaluation, constraint application,
// SQL compilation and safety validation, the data-quality gate, warehouse
// execution, post-execution redaction, lineage, optional export and the
// immutable evidence record.
//
// Stages are strictly ordered and each produces an immutable value consumed
// by the next; a failing stage terminates the run with a typed error and no
// later stage runs. Evidence exists only for requests that executed.
package pipeline
