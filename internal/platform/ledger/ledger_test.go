package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()
	first := time.Date(2025, time.May, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return first }

	runID, err := l.Record(ctx, []Entry{
		{Kind: KindMonthly, Employee: "ana", Period: "2025-Q2", Score: 88.5, Rubrica: "Aceptable", Source: "may.yaml"},
		{Kind: KindMonthly, Employee: "luis", Period: "2025-Q2", Score: 45, Rubrica: "Medidas correctivas", Source: "may.yaml"},
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected run id")
	}

	l.now = func() time.Time { return first.Add(24 * time.Hour) }
	if _, err := l.Record(ctx, []Entry{{Kind: KindAccumulated, Employee: "ana", Score: 91, Rubrica: "Excelente"}}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	all, err := l.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Kind != KindAccumulated || !all[0].RecordedAt.Equal(first.Add(24*time.Hour)) {
		t.Fatalf("expected newest first, got %+v", all[0])
	}

	ana, err := l.List(ctx, Filter{Employee: "ana", Kind: KindMonthly})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ana) != 1 || ana[0].Score != 88.5 || ana[0].RunID != runID || ana[0].Source != "may.yaml" {
		t.Fatalf("unexpected filtered entries %+v", ana)
	}

	limited, err := l.List(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := l.Record(context.Background(), []Entry{{Kind: KindMonthly, Employee: "ana", Score: 70, Rubrica: "Necesita mejorar"}}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	_ = l.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer again.Close()
	entries, err := again.List(context.Background(), Filter{})
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected persisted entry, got %v %v", entries, err)
	}
}

func TestRecordEmptyIsNoop(t *testing.T) {
	l := openTemp(t)
	if _, err := l.Record(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, err := l.List(context.Background(), Filter{})
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected no entries, got %v %v", entries, err)
	}
}
