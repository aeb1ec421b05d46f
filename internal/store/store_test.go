package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if _, err := s1.db.Exec("INSERT INTO users (id) VALUES (42)"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("users = %d after reopen, want 1", count)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	if _, err := s.db.Exec("INSERT INTO users (id) VALUES (1)"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("users = %d, want 1", count)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDSN(t *testing.T) {
	if got, want := dsn("a.db"), "a.db?"+dsnParams; got != want {
		t.Errorf("dsn() = %q, want %q", got, want)
	}
	if got, want := dsn("file:a.db?cache=shared"), "file:a.db?cache=shared&"+dsnParams; got != want {
		t.Errorf("dsn() = %q, want %q", got, want)
	}
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)
	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)
	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_UserVersion(t *testing.T) {
	s := createTestStore(t)
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_UsersTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "users")
	expected := []string{
		"id", "welcomed", "bio", "profile_image_url",
		"prompt_kind", "prompt_payload", "prompt_message_id",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("users table missing column %q", col)
		}
	}
}

func TestSchema_ResponsesTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "responses")
	expected := []string{"responder_id", "subject_id", "accepted", "dismissed"}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("responses table missing column %q", col)
		}
	}
}

func TestSchema_ResponsesIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "responses")
	if !contains(indexes, "idx_responses_subject") {
		t.Error("responses table missing index idx_responses_subject")
	}
}

// Constraint tests

func TestConstraint_ResponsesForeignKey(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO responses (responder_id, subject_id, accepted)
		VALUES (1, 2, 1)
	`)
	if err == nil {
		t.Fatal("expected foreign key constraint violation, got nil")
	}
	if !IsConstraint(err) {
		t.Errorf("IsConstraint(%v) = false, want true", err)
	}
}

func TestConstraint_ResponsesUnique(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.db.Exec("INSERT INTO users (id) VALUES (1), (2)"); err != nil {
		t.Fatalf("insert users failed: %v", err)
	}
	if _, err := s.db.Exec("INSERT INTO responses (responder_id, subject_id, accepted) VALUES (1, 2, 1)"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := s.db.Exec("INSERT INTO responses (responder_id, subject_id, accepted) VALUES (1, 2, 0)")
	if !IsConstraint(err) {
		t.Errorf("expected UNIQUE constraint violation, got %v", err)
	}
}

func TestConstraint_PromptColumnsTogether(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec("INSERT INTO users (id, prompt_kind) VALUES (1, 10)")
	if !IsConstraint(err) {
		t.Errorf("expected CHECK constraint violation, got %v", err)
	}
}
