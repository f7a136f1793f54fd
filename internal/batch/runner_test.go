package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/storage"
)

const extractionResponse = `{
	"contractState": {"number": "12-2025", "subject": "поставка товара"},
	"keyProvisions": [
		{"id": "kp1", "title": "Оплата", "content": "Оплата по счёту.", "category": "оплата", "sourceRefs": []}
	],
	"paymentObligations": [],
	"possibleStates": []
}`

func newTestRunner(t *testing.T, opts ...RunnerOption) (*Runner, string) {
	t.Helper()
	outDir := filepath.Join(t.TempDir(), "out")
	parser := pipeline.NewParser(oracle.NewMockOracle(extractionResponse))
	opts = append([]RunnerOption{WithDelay(0)}, opts...)
	return NewRunner(parser, outDir, opts...), outDir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	r, outDir := newTestRunner(t)
	inDir := t.TempDir()
	writeInput(t, inDir, "a.txt", "1.1. Оплата по счёту в течение 5 дней.")
	writeInput(t, inDir, "b.txt", "1.1. Поставка товара в течение месяца.")
	writeInput(t, inDir, "notes.log", "ignored")

	sum, err := r.Run(context.Background(), inDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 2 || sum.Failed != 0 || sum.Skipped != 1 {
		t.Errorf("summary = %+v, want 2 processed, 0 failed, 1 skipped", sum)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "a.json"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var doc models.ContractDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.ContractState.Number != "12-2025" {
		t.Errorf("Number = %q", doc.ContractState.Number)
	}
	if len(doc.KeyProvisions) != 1 {
		t.Errorf("KeyProvisions = %d, want 1", len(doc.KeyProvisions))
	}
}

func TestRun_failedFileIsSkipped(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	orc := oracle.NewMockOracle(extractionResponse)
	parser := pipeline.NewParser(orc)
	r := NewRunner(parser, outDir, WithDelay(0))

	inDir := t.TempDir()
	writeInput(t, inDir, "empty.txt", "   ")
	writeInput(t, inDir, "good.txt", "1.1. Оплата по счёту.")

	sum, err := r.Run(context.Background(), inDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v, want 1 processed, 1 failed", sum)
	}
	if _, err := os.Stat(filepath.Join(outDir, "good.json")); err != nil {
		t.Errorf("good.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "empty.json")); !os.IsNotExist(err) {
		t.Error("empty.json should not exist")
	}
}

func TestRun_withStorage(t *testing.T) {
	store, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, _ := newTestRunner(t, WithStorage(store))

	inDir := t.TempDir()
	writeInput(t, inDir, "a.txt", "1.1. Оплата по счёту.")

	if _, err := r.Run(context.Background(), inDir); err != nil {
		t.Fatalf("Run: %v", err)
	}

	count, err := store.CountContracts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("stored contracts = %d, want 1", count)
	}
}

func TestRun_cancelledContext(t *testing.T) {
	r, _ := newTestRunner(t)
	inDir := t.TempDir()
	writeInput(t, inDir, "a.txt", "1.1. Оплата.")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, inDir); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestWatcherProcessesNewFile(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 1)
	w := NewWatcher(dir, []string{".txt"}, func(path string) {
		select {
		case got <- path:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "new.txt")
	if err := os.WriteFile(path, []byte("1.1. Текст договора."), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if p != path {
			t.Errorf("path = %q, want %q", p, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher callback")
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 1)
	w := NewWatcher(dir, []string{".txt"}, func(path string) {
		select {
		case got <- path:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "skip.log"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		t.Errorf("unexpected callback for %q", p)
	case <-time.After(500 * time.Millisecond):
	}
}
