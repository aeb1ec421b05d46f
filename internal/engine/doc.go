// Package engine implements the prompt engine: it decides what a participant
// is shown next, records their actions, and resolves mutual matches.
//
// ARCHITECTURE:
//
// Update Transactions:
// Every inbound response is handled inside one store transaction that stays
// open until the resulting prompt has been rendered by the transport.
//  1. Submit bootstraps the participant and interprets the response
//  2. Prepare applies the action and resolves the next prompt
//  3. The transport renders Transaction.Text and Transaction.Reactions
//  4. Commit records (prompt, message id) and makes the action durable
//
// If rendering fails the transaction is abandoned and nothing is recorded,
// so the stored prompt always names a message the participant actually saw.
//
// Interrupts:
// After an AcceptCandidate commits, the accepted participant may need a
// fresh prompt (a new candidate or a match). PrepareInterrupt opens a
// separate transaction for them and suppresses the interrupt if they are
// already looking at something at least as urgent.
//
// Concurrency:
// Handlers for different participants run in parallel; the store serializes
// their transactions. The engine itself holds no mutable state.
package engine
