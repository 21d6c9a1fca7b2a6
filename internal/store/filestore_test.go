package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eeeeman22/verbatim/internal/session"
	"github.com/eeeeman22/verbatim/internal/store"
)

func newTestSession(t *testing.T, id string) *session.Session {
	t.Helper()
	s := session.New(id, "student-1", "Alex P")

	w, err := session.NewWord("w-1", "rabbit", 0.42, 0, 500*time.Millisecond, 0.7)
	if err != nil {
		t.Fatalf("NewWord: %v", err)
	}
	w.Expected = "/ɹ æ b ɪ t/"
	w.Produced = "/w æ b ɪ t/"
	s.Words = append(s.Words, w)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	want := newTestSession(t, "sess-1")
	if err := fs.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
	if got.StudentName != want.StudentName {
		t.Errorf("StudentName = %q, want %q", got.StudentName, want.StudentName)
	}
	if len(got.Words) != 1 {
		t.Fatalf("len(Words) = %d, want 1", len(got.Words))
	}
	w := got.Words[0]
	if w.Text != "rabbit" {
		t.Errorf("Words[0].Text = %q, want %q", w.Text, "rabbit")
	}
	if w.Status != session.StatusFlagged {
		t.Errorf("Words[0].Status = %q, want %q", w.Status, session.StatusFlagged)
	}
	if w.Expected != "/ɹ æ b ɪ t/" {
		t.Errorf("Words[0].Expected = %q, want %q", w.Expected, "/ɹ æ b ɪ t/")
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	s := newTestSession(t, "sess-1")
	if err := fs.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s.Notes = "second pass"
	if err := fs.Save(ctx, s); err != nil {
		t.Fatalf("Save (replace): %v", err)
	}

	got, err := fs.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Notes != "second pass" {
		t.Errorf("Notes = %q, want %q", got.Notes, "second pass")
	}

	list, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len(List) = %d, want 1", len(list))
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	t.Parallel()

	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := fs.Load(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFileStoreListOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	older := newTestSession(t, "sess-old")
	older.Date = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	newer := newTestSession(t, "sess-new")
	newer.Date = time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	if err := fs.Save(ctx, older); err != nil {
		t.Fatalf("Save(older): %v", err)
	}
	if err := fs.Save(ctx, newer); err != nil {
		t.Fatalf("Save(newer): %v", err)
	}

	list, err := fs.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(list))
	}
	if list[0].ID != "sess-new" {
		t.Errorf("List[0].ID = %q, want %q (newest first)", list[0].ID, "sess-new")
	}
	if list[0].WordCount != 1 {
		t.Errorf("List[0].WordCount = %d, want 1", list[0].WordCount)
	}
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := fs.Save(ctx, newTestSession(t, "sess-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fs.Load(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Load(deleted) error = %v, want ErrNotFound", err)
	}
	if err := fs.Delete(ctx, "sess-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
