package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BrennerSpear/clarity/pkg/errors"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close(ctx)

	run := NewRun("compose", "abc123", 5, 7, json.RawMessage(`{"nodes":[]}`))
	if run.ID == "" {
		t.Fatal("NewRun should assign an id")
	}
	if err := s.Save(ctx, run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "compose" || got.GraphHash != "abc123" || got.NodeCount != 5 || got.EdgeCount != 7 {
		t.Errorf("got = %+v", got)
	}
	if string(got.Layout) != `{"nodes":[]}` {
		t.Errorf("layout = %s", got.Layout)
	}
}

func TestFileStore_SaveAssignsID(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	run := &Run{Source: "json", CreatedAt: time.Now()}
	if err := s.Save(ctx, run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if run.ID == "" {
		t.Error("Save should assign an id when empty")
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = s.Get(ctx, "no-such-run")
	if err == nil {
		t.Fatal("expected an error for a missing run")
	}
	if errors.GetCode(err) != errors.ErrCodeRunNotFound {
		t.Errorf("code = %s, want %s", errors.GetCode(err), errors.ErrCodeRunNotFound)
	}
}

func TestFileStore_GetRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if _, err := s.Get(ctx, "../outside"); err == nil {
		t.Fatal("expected an error for a traversal id")
	}
}

func TestFileStore_ListNewestFirstAndLimit(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		run := NewRun("compose", "h", 1, 0, json.RawMessage(`{}`))
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(ctx, run); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if !runs[0].CreatedAt.After(runs[1].CreatedAt) {
		t.Error("runs should be ordered newest first")
	}
	// Listings omit the layout document.
	if runs[0].Layout != nil {
		t.Error("listed runs should omit the layout")
	}
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	run := NewRun("compose", "h", 1, 0, nil)
	if err := s.Save(ctx, run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, run.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, run.ID); errors.GetCode(err) != errors.ErrCodeRunNotFound {
		t.Errorf("expected RUN_NOT_FOUND after delete, got %v", err)
	}

	// Deleting again is fine.
	if err := s.Delete(ctx, run.ID); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}
