// Package memory implements the durable learning store that shapes future
// design proposals from past human judgments.
//
// The store owns a single JSON document (see Document) holding design
// principles, opaque styling configuration, the append-only history of
// approved and rejected patterns, and a log of session summaries. Every
// write is a full read-modify-write cycle against a Backend so the
// acceptance-rate invariant is never read stale and a recorded judgment is
// durable before the call returns.
//
// A missing document is a fatal initialization error, never an implicit
// empty state: an empty memory would misrepresent "no constraints" versus
// "not yet initialized". Creation happens only through an explicit Init.
package memory
