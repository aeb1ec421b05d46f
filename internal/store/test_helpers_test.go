package store

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/roach88/tandem/internal/model"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// inTx runs fn in a transaction and commits it.
func inTx(t *testing.T, s *Store, fn func(ctx context.Context, tx *Tx) error) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()
	if err := fn(ctx, tx); err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() failed: %v", err)
	}
}

// createProfile creates a welcomed user with a bio and, if image is
// non-empty, a profile image.
func createProfile(t *testing.T, s *Store, id model.UserID, image string) {
	t.Helper()
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		if _, err := tx.GetOrCreate(ctx, id); err != nil {
			return err
		}
		if err := tx.Welcome(ctx, id); err != nil {
			return err
		}
		if err := tx.SetBio(ctx, id, "bio of "+id.String()); err != nil {
			return err
		}
		if image == "" {
			return nil
		}
		u, err := url.Parse(image)
		if err != nil {
			return err
		}
		return tx.SetProfileImage(ctx, id, u)
	})
}

// respond records a ledger entry in its own transaction.
func respond(t *testing.T, s *Store, responder, subject model.UserID, accepted bool) {
	t.Helper()
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.Respond(ctx, responder, subject, accepted)
	})
}

// setPrompt records a prompt message in its own transaction.
func setPrompt(t *testing.T, s *Store, id model.UserID, p model.Prompt, msg model.MessageID) {
	t.Helper()
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.SetPromptMessage(ctx, id, model.PromptMessage{Prompt: p, MessageID: msg})
	})
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_index_list(?)", table)
	if err != nil {
		t.Fatalf("index_list(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var idx []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		idx = append(idx, name)
	}
	return idx
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
