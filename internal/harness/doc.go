// Package harness runs matchmaking scenarios against a real engine.
//
// A scenario is a YAML file naming a policy, a sequence of participant
// responses, and the state expected afterwards:
//
//	name: mutual_match
//	description: "Two participants onboard and accept each other"
//	policy:
//	  require_profile_image: false
//	steps:
//	  - user: 100
//	    say: hello
//	  - user: 100
//	    react: thumbsup
//	    on: current
//	  - user: 100
//	    say: "I like climbing"
//	expect:
//	  - user: 100
//	    prompt: quiescent
//	ledger:
//	  - responder: 200
//	    subject: 100
//	    accepted: true
//
// Each step supplies exactly one of say, image or react. A reaction's on
// field is empty (the transport could not tell which message it answers),
// "current" (the message carrying the participant's current prompt), or a
// literal message id. Setting fail_render makes the reply render fail, which
// must leave the store untouched.
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory store and a testutil.Recorder, so message
// ids start at 1 and the transcript is identical across runs. Transcripts
// are compared against golden files in testdata/golden; regenerate them with
//
//	go test ./internal/harness -update
package harness
