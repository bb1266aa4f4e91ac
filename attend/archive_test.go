package attend

import (
	"path/filepath"
	"testing"
	"time"
)

func TestArchive_SightingsAndReconciliation(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	now := time.Now()
	if err := a.RecordSighting("AABBCCDD", "10.0.0.21:2022", now); err != nil {
		t.Fatal(err)
	}
	if err := a.RecordSighting("11223344", "10.0.0.22:2022", now); err != nil {
		t.Fatal(err)
	}

	pending, err := a.PendingSightings()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending sightings, got %d", len(pending))
	}
	if pending[0].Tag != "AABBCCDD" || pending[0].Reader != "10.0.0.21:2022" {
		t.Fatalf("unexpected first sighting: %+v", pending[0])
	}

	if err := a.MarkReconciled([]string{"AABBCCDD"}, now.Add(5*time.Second)); err != nil {
		t.Fatal(err)
	}
	pending, err = a.PendingSightings()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].Tag != "11223344" {
		t.Fatalf("expected only 11223344 pending, got %+v", pending)
	}
}

func TestArchive_MarkReconciledEmptyIsNoop(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), "attendance.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if err := a.MarkReconciled(nil, time.Now()); err != nil {
		t.Fatal(err)
	}
}
