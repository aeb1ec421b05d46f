package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tandem/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so reads can run inside
// or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Entry is one row of the response ledger.
type Entry struct {
	Responder model.UserID
	Subject   model.UserID
	Accepted  bool
	Dismissed bool
}

// CandidateQuery selects which participants may be offered as candidates.
type CandidateQuery struct {
	// RequireProfileImage excludes users without a profile image.
	RequireProfileImage bool
	// ExcludeDecliners excludes users who already declined the requester.
	ExcludeDecliners bool
	// PreferAccepted ranks users who already accepted the requester first.
	PreferAccepted bool
	// RequireQuiescent only offers users whose current prompt is Quiescent.
	RequireQuiescent bool
}

const userColumns = `id, welcomed, bio, profile_image_url, prompt_kind, prompt_payload, prompt_message_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (model.User, error) {
	var (
		id        int64
		welcomed  bool
		bio       sql.NullString
		image     sql.NullString
		kind      sql.NullInt64
		payload   sql.NullInt64
		messageID sql.NullInt64
	)
	if err := row.Scan(&id, &welcomed, &bio, &image, &kind, &payload, &messageID); err != nil {
		return model.User{}, err
	}

	u := model.User{ID: model.UserID(id), Welcomed: welcomed}
	if bio.Valid {
		text := bio.String
		u.Bio = &text
	}

	img, err := decodeURL(u.ID, image)
	if err != nil {
		return model.User{}, err
	}
	u.ProfileImage = img

	if kind.Valid {
		p, err := decodePrompt(u.ID, kind.Int64, payload)
		if err != nil {
			return model.User{}, err
		}
		u.PromptMessage = &model.PromptMessage{Prompt: p, MessageID: model.MessageID(messageID.Int64)}
	}
	return u, nil
}

func readUser(ctx context.Context, q querier, id model.UserID) (model.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, int64(id))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("read user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("read user %d: %w", id, err)
	}
	return u, nil
}

func readUsers(ctx context.Context, q querier) ([]model.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func readEntries(ctx context.Context, q querier) ([]Entry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT responder_id, subject_id, accepted, dismissed
		FROM responses
		ORDER BY responder_id ASC, subject_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                  Entry
			responder, subject int64
		)
		if err := rows.Scan(&responder, &subject, &e.Accepted, &e.Dismissed); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		e.Responder, e.Subject = model.UserID(responder), model.UserID(subject)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate responses: %w", err)
	}
	return entries, nil
}

func readEntry(ctx context.Context, q querier, responder, subject model.UserID) (Entry, bool, error) {
	e := Entry{Responder: responder, Subject: subject}
	err := q.QueryRowContext(ctx, `
		SELECT accepted, dismissed FROM responses
		WHERE responder_id = ? AND subject_id = ?
	`, int64(responder), int64(subject)).Scan(&e.Accepted, &e.Dismissed)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read response %d->%d: %w", responder, subject, err)
	}
	return e, true, nil
}

func findMatch(ctx context.Context, q querier, id model.UserID) (model.UserID, bool, error) {
	var subject int64
	err := q.QueryRowContext(ctx, `
		SELECT mine.subject_id
		FROM responses mine
		JOIN responses theirs
		  ON theirs.responder_id = mine.subject_id
		 AND theirs.subject_id = mine.responder_id
		WHERE mine.responder_id = ?
		  AND mine.accepted = 1
		  AND mine.dismissed = 0
		  AND theirs.accepted = 1
		ORDER BY mine.subject_id ASC
		LIMIT 1
	`, int64(id)).Scan(&subject)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find match for %d: %w", id, err)
	}
	return model.UserID(subject), true, nil
}

// candidateSQL builds the candidate query. ?1 is the requester throughout.
func candidateSQL(cq CandidateQuery) string {
	var b strings.Builder
	b.WriteString(`
		SELECT u.id
		FROM users u
		WHERE u.id != ?1
		  AND u.welcomed = 1
		  AND u.bio IS NOT NULL`)
	if cq.RequireProfileImage {
		b.WriteString(`
		  AND u.profile_image_url IS NOT NULL`)
	}
	b.WriteString(`
		  AND NOT EXISTS (
		    SELECT 1 FROM responses r
		    WHERE r.responder_id = ?1 AND r.subject_id = u.id
		  )`)
	if cq.ExcludeDecliners {
		b.WriteString(`
		  AND NOT EXISTS (
		    SELECT 1 FROM responses r
		    WHERE r.responder_id = u.id AND r.subject_id = ?1 AND r.accepted = 0
		  )`)
	}
	if cq.RequireQuiescent {
		fmt.Fprintf(&b, `
		  AND u.prompt_kind = %d`, int(model.PromptQuiescent))
	}
	b.WriteString(`
		ORDER BY `)
	if cq.PreferAccepted {
		b.WriteString(`EXISTS (
		    SELECT 1 FROM responses r
		    WHERE r.responder_id = u.id AND r.subject_id = ?1 AND r.accepted = 1
		  ) DESC, `)
	}
	b.WriteString(`u.id ASC
		LIMIT 1`)
	return b.String()
}

func findCandidate(ctx context.Context, q querier, id model.UserID, cq CandidateQuery) (model.UserID, bool, error) {
	var candidate int64
	err := q.QueryRowContext(ctx, candidateSQL(cq), int64(id)).Scan(&candidate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find candidate for %d: %w", id, err)
	}
	return model.UserID(candidate), true, nil
}

// User reads a single user outside any transaction.
// Returns an error wrapping ErrNotFound if the user has no row.
func (s *Store) User(ctx context.Context, id model.UserID) (model.User, error) {
	return readUser(ctx, s.db, id)
}

// Users returns every user ordered by id.
// Returns an empty slice (not nil) if there are none.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	return readUsers(ctx, s.db)
}

// Entries returns the whole response ledger ordered by (responder, subject).
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	return readEntries(ctx, s.db)
}

// Entry reads the ledger row for (responder, subject). ok is false if the
// responder has never answered about subject.
func (s *Store) Entry(ctx context.Context, responder, subject model.UserID) (e Entry, ok bool, err error) {
	return readEntry(ctx, s.db, responder, subject)
}
