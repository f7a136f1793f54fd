package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	return s
}

func TestFileSaveGet(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	if err := s.SaveContract(ctx, testRecord("c1", "dogovor.txt")); err != nil {
		t.Fatalf("SaveContract: %v", err)
	}

	got, err := s.GetContract(ctx, "c1")
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if got.Name != "dogovor.txt" {
		t.Errorf("Name = %q, want dogovor.txt", got.Name)
	}
	if got.Document == nil || got.Document.ContractState.Number != "42-2025" {
		t.Errorf("document not round-tripped: %+v", got.Document)
	}

	if _, err := os.Stat(filepath.Join(s.root, "c1.json")); err != nil {
		t.Errorf("expected c1.json on disk: %v", err)
	}
}

func TestFileGetNotFound(t *testing.T) {
	s := newTestFileStorage(t)

	_, err := s.GetContract(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetContract err = %v, want ErrNotFound", err)
	}
}

func TestFileDelete(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	if err := s.SaveContract(ctx, testRecord("c1", "a.txt")); err != nil {
		t.Fatalf("SaveContract: %v", err)
	}
	if err := s.DeleteContract(ctx, "c1"); err != nil {
		t.Fatalf("DeleteContract: %v", err)
	}
	if err := s.DeleteContract(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteContract twice err = %v, want ErrNotFound", err)
	}
}

func TestFileListOrder(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"c1", "c2", "c3"} {
		rec := testRecord(id, id+".txt")
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.SaveContract(ctx, rec); err != nil {
			t.Fatalf("SaveContract(%s): %v", id, err)
		}
	}

	sums, err := s.ListContracts(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("len = %d, want 3", len(sums))
	}
	if sums[0].ID != "c3" || sums[2].ID != "c1" {
		t.Errorf("expected newest first, got %s %s %s", sums[0].ID, sums[1].ID, sums[2].ID)
	}

	count, err := s.CountContracts(ctx)
	if err != nil {
		t.Fatalf("CountContracts: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestFileListOffsetBeyondEnd(t *testing.T) {
	s := newTestFileStorage(t)
	ctx := context.Background()

	if err := s.SaveContract(ctx, testRecord("c1", "a.txt")); err != nil {
		t.Fatalf("SaveContract: %v", err)
	}
	sums, err := s.ListContracts(ctx, 5, 10)
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(sums) != 0 {
		t.Errorf("len = %d, want 0", len(sums))
	}
}

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("world!"), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := DiskUsageBytes(dir)
	if err != nil {
		t.Fatalf("DiskUsageBytes: %v", err)
	}
	if n != 11 {
		t.Errorf("total = %d, want 11", n)
	}

	n, err = DiskUsageBytes(dir, filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("DiskUsageBytes with missing path: %v", err)
	}
	if n != 11 {
		t.Errorf("total = %d, want 11 (missing path skipped)", n)
	}
}
