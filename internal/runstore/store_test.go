package runstore

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndReadBack(t *testing.T) {
	s := openTestStore(t)

	want := Run{
		RunID:        "run-1",
		Input:        "drawing.svg",
		RawPoints:    42,
		UniquePoints: 21,
		Duplicates:   21,
		MinX:         0, MinY: 0, MaxX: 40, MaxY: 10,
		Success: true,
		Results: []RunResult{
			{Generator: "gcode", Success: true, OutputPath: "welds.gcode"},
			{Generator: "preview", Success: false, Error: "disk full"},
		},
	}
	if err := s.RecordRun(want); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	got := runs[0]
	got.CreatedAt = want.CreatedAt // server-assigned
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 5; i++ {
		run := Run{RunID: fmt.Sprintf("run-%d", i), Input: "a.svg", Success: true}
		if err := s.RecordRun(run); err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	runs, err := s.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, want := range []string{"run-5", "run-4", "run-3"} {
		if runs[i].RunID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].RunID, want)
		}
	}
}

func TestRecordRejectsDuplicateRunID(t *testing.T) {
	s := openTestStore(t)

	run := Run{RunID: "run-1", Input: "a.svg"}
	if err := s.RecordRun(run); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(run); err == nil {
		t.Error("expected primary key violation for duplicate run id")
	}
}

func TestRecentRunsEmptyStore(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs from an empty store", len(runs))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s1.RecordRun(Run{RunID: "run-1", Input: "a.svg"}); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	// Reopening applies no migrations and keeps existing rows.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	runs, err := s2.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}
