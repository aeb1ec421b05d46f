// Package policy holds the deployment knobs that shape matchmaking.
//
// Deployments disagree on a handful of rules: whether a profile image is
// required before a participant can be matched, whether someone who declined
// you can still be offered to you, and whether candidates who already accepted
// you jump the queue. Each rule is an explicit field on Policy rather than an
// incidental SQL predicate, so it can be tested in isolation.
//
// Policies are written in CUE and validated against an embedded schema:
//
//	require_profile_image: true
//	exclusion:             "declined"
//	prefer_accepted:       true
//
// Omitted fields take the schema defaults, which match Default().
package policy
