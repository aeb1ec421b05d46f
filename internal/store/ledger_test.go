package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/tandem/internal/model"
)

func TestRespond_UpsertKeepsSingleRow(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	createProfile(t, s, 2, "")

	respond(t, s, 1, 2, true)
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.DismissMatch(ctx, 1, 2)
	})
	respond(t, s, 1, 2, false)
	respond(t, s, 1, 2, true)

	entries, err := s.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	want := []Entry{{Responder: 1, Subject: 2, Accepted: true, Dismissed: false}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}

func TestRespond_ClearsDismissal(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	createProfile(t, s, 2, "")

	respond(t, s, 1, 2, true)
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.DismissMatch(ctx, 1, 2)
	})

	e, ok, err := s.Entry(context.Background(), 1, 2)
	if err != nil || !ok {
		t.Fatalf("Entry() = %v, %v, %v", e, ok, err)
	}
	if !e.Dismissed {
		t.Fatal("expected entry to be dismissed")
	}

	respond(t, s, 1, 2, true)
	e, _, err = s.Entry(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Entry() failed: %v", err)
	}
	if e.Dismissed {
		t.Error("Respond() should clear dismissed")
	}
}

func TestDismissMatch_IgnoresDeclined(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	createProfile(t, s, 2, "")

	respond(t, s, 1, 2, false)
	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		return tx.DismissMatch(ctx, 1, 2)
	})

	e, _, err := s.Entry(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Entry() failed: %v", err)
	}
	if e.Dismissed {
		t.Error("DismissMatch() should not touch a declined entry")
	}
}

func TestRespond_UnknownUser(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()

	err = tx.Respond(ctx, 1, 2, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Respond() error = %v, want ErrNotFound", err)
	}
}

func TestRespond_Self(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() failed: %v", err)
	}
	defer tx.Rollback()

	err = tx.Respond(ctx, 1, 1, true)
	if !IsConstraint(err) {
		t.Errorf("Respond(self) error = %v, want constraint violation", err)
	}
}

func TestEntry_Absent(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	createProfile(t, s, 2, "")

	_, ok, err := s.Entry(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("Entry() failed: %v", err)
	}
	if ok {
		t.Error("Entry() ok = true for a pair with no response")
	}
}

func TestTxEntry_SeesUncommittedWrite(t *testing.T) {
	s := createTestStore(t)
	createProfile(t, s, 1, "")
	createProfile(t, s, 2, "")

	inTx(t, s, func(ctx context.Context, tx *Tx) error {
		if err := tx.Respond(ctx, 2, 1, false); err != nil {
			return err
		}
		e, ok, err := tx.Entry(ctx, 2, 1)
		if err != nil {
			return err
		}
		want := Entry{Responder: 2, Subject: 1}
		if !ok || e != want {
			t.Errorf("Entry() = %+v, %v; want %+v, true", e, ok, want)
		}
		return nil
	})
}

func TestEntries_Ordered(t *testing.T) {
	s := createTestStore(t)
	for _, id := range []model.UserID{1, 2, 3} {
		createProfile(t, s, id, "")
	}
	respond(t, s, 3, 1, true)
	respond(t, s, 1, 3, false)
	respond(t, s, 1, 2, true)

	entries, err := s.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	want := []Entry{
		{Responder: 1, Subject: 2, Accepted: true},
		{Responder: 1, Subject: 3, Accepted: false},
		{Responder: 3, Subject: 1, Accepted: true},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
