// Package evidence defines the audit record produced for every successfully
// executed analytics query, and the storage, recording, export, and
// retention machinery around it.
//
// An evidence record ties together the original request, the policy decision
// and the constraints actually applied, the compiled SQL with its canonical
// form and content hash, the quality snapshot of every data product read,
// and the result counts. Records are write-once: they are created exactly
// once per executed request and never updated afterwards.
package evidence
