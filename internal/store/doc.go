// Package store provides SQLite-backed durable storage for participants and
// the pairwise response ledger.
//
// The store holds two tables:
//   - users: profile fields and the prompt message last delivered
//   - responses: one row per (responder, subject) pair with accepted and
//     dismissed flags
//
// # Transactions
//
// Every mutation happens inside a Tx obtained from Store.Begin. The engine
// keeps a Tx open while a prompt is rendered, so the connection pool is
// limited to a single connection and transactions start with BEGIN
// IMMEDIATE. Transactions are therefore fully serialized; a goroutine that
// holds a Tx must not call Store read methods until it commits or rolls back.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Both ledger columns must reference existing users
//
// Candidate and match queries order by user id so results are deterministic.
package store
