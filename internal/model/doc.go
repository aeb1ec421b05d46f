// Package model defines the conversational state of a matchmaking participant
// and the pure rules that interpret their responses.
//
// This package contains no I/O. The store persists these types and the engine
// resolves them; both import model, model imports nothing internal except
// policy.
//
// Three closed variant sets drive everything:
//
//   - Prompt: what a participant is currently being shown, totally ordered by
//     urgency (Welcome < Bio < ProfileImage < Quiescent < Candidate < Match).
//   - Response: what a transport observed (a message, an image, a reaction).
//   - Action: the only way state mutates, derived from a Response by Interpret.
//
// Response and Action are sealed interfaces; Prompt is a comparable struct with
// an explicit kind so urgency comparisons never depend on declaration order.
package model
