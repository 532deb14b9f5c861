// Package session implements the guarded iteration controller for automated
// design-improvement loops.
//
// A Session is one bounded improvement attempt: an objective, a file scope,
// and an iteration budget. Within a session an external generator submits
// Proposals; the controller decides, before and after every generation step,
// whether the loop is permitted to keep going. It never performs generation
// itself.
//
// Stopping rules are fixed constants, checked in strict precedence order by
// CanContinue:
//
//  1. unknown session
//  2. session already terminal (complete or stopped)
//  3. absolute iteration cap (10)
//  4. human-review gate (3 iterations, lifted to the revision budget while
//     the session is revising)
//  5. confidence threshold (a proposal at >= 0.85 is ready for review)
//
// Every refusal carries a reason string naming the rule that fired, so a
// human reviewer can tell exactly which guardrail stopped the loop.
//
// The controller is an explicit object owned by the caller. Multiple
// sessions may coexist by id; the "active" session is a convenience pointer
// only, never load-bearing.
package session
