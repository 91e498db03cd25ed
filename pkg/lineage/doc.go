// Package lineage emits OpenLineage-style provenance events for executed
// queries. Emission is best-effort: every event is written as a local JSON
// artifact, and optionally posted to a remote lineage collector with a short
// timeout. Failure of either path never fails the originating request.
package lineage
