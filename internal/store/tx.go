package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/roach88/tandem/internal/model"
)

// Tx is a write transaction. All engine mutations go through a Tx; nothing
// is visible to other transactions until Commit.
type Tx struct {
	tx *sql.Tx
}

// Commit makes the transaction's writes durable.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. Rolling back a finished transaction
// returns sql.ErrTxDone.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// GetOrCreate returns the user with the given id, inserting a fresh row
// first if none exists.
func (t *Tx) GetOrCreate(ctx context.Context, id model.UserID) (model.User, error) {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO users (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, int64(id))
	if err != nil {
		return model.User{}, fmt.Errorf("create user %d: %w", id, err)
	}
	return readUser(ctx, t.tx, id)
}

// User reads a user inside the transaction.
func (t *Tx) User(ctx context.Context, id model.UserID) (model.User, error) {
	return readUser(ctx, t.tx, id)
}

// Welcome marks the user as having acknowledged the welcome prompt.
func (t *Tx) Welcome(ctx context.Context, id model.UserID) error {
	return t.updateUser(ctx, "welcome", id, `UPDATE users SET welcomed = 1 WHERE id = ?`, int64(id))
}

// SetBio replaces the user's bio.
func (t *Tx) SetBio(ctx context.Context, id model.UserID, bio string) error {
	return t.updateUser(ctx, "set bio", id, `UPDATE users SET bio = ? WHERE id = ?`, bio, int64(id))
}

// SetProfileImage replaces the user's profile image.
func (t *Tx) SetProfileImage(ctx context.Context, id model.UserID, image *url.URL) error {
	return t.updateUser(ctx, "set profile image", id,
		`UPDATE users SET profile_image_url = ? WHERE id = ?`, encodeURL(image), int64(id))
}

// SetPromptMessage records the prompt delivered to the user and the message
// that carries it, replacing any previous one.
func (t *Tx) SetPromptMessage(ctx context.Context, id model.UserID, pm model.PromptMessage) error {
	kind, payload, err := encodePrompt(pm.Prompt)
	if err != nil {
		return fmt.Errorf("set prompt message for %d: %w", id, err)
	}
	return t.updateUser(ctx, "set prompt message", id, `
		UPDATE users
		SET prompt_kind = ?, prompt_payload = ?, prompt_message_id = ?
		WHERE id = ?
	`, kind, payload, int64(pm.MessageID), int64(id))
}

func (t *Tx) updateUser(ctx context.Context, op string, id model.UserID, query string, args ...any) error {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

// Respond records responder's answer about subject. A later answer replaces
// the earlier one in place and clears any dismissal.
//
// Returns an error wrapping ErrNotFound if either user has no row, and a
// constraint error (see IsConstraint) if responder == subject.
func (t *Tx) Respond(ctx context.Context, responder, subject model.UserID, accepted bool) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO responses (responder_id, subject_id, accepted, dismissed)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(responder_id, subject_id)
		DO UPDATE SET accepted = excluded.accepted, dismissed = 0
	`, int64(responder), int64(subject), accepted)
	if isForeignKey(err) {
		return fmt.Errorf("respond %d->%d: %w", responder, subject, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("respond %d->%d: %w", responder, subject, err)
	}
	return nil
}

// DismissMatch hides the match between responder and subject from
// responder. It is a no-op unless responder has accepted subject.
func (t *Tx) DismissMatch(ctx context.Context, responder, subject model.UserID) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE responses SET dismissed = 1
		WHERE responder_id = ? AND subject_id = ? AND accepted = 1
	`, int64(responder), int64(subject))
	if err != nil {
		return fmt.Errorf("dismiss match %d->%d: %w", responder, subject, err)
	}
	return nil
}

// Entry reads the ledger row for (responder, subject) inside the
// transaction.
func (t *Tx) Entry(ctx context.Context, responder, subject model.UserID) (e Entry, ok bool, err error) {
	return readEntry(ctx, t.tx, responder, subject)
}

// FindMatch returns the lowest-id participant who shares a mutual, undismissed
// acceptance with id.
func (t *Tx) FindMatch(ctx context.Context, id model.UserID) (model.UserID, bool, error) {
	return findMatch(ctx, t.tx, id)
}

// FindCandidate returns the best eligible candidate for id under cq.
func (t *Tx) FindCandidate(ctx context.Context, id model.UserID, cq CandidateQuery) (model.UserID, bool, error) {
	return findCandidate(ctx, t.tx, id, cq)
}
