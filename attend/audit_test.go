package attend

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestAuditLog_MissingFileIsEmpty(t *testing.T) {
	a := NewAuditLog(filepath.Join(t.TempDir(), "attendance.json"))
	seen, err := a.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 0 {
		t.Fatalf("expected empty set, got %v", seen)
	}
}

func TestAuditLog_MergeIsUnion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.json")
	a := NewAuditLog(path)

	if err := a.Merge([]string{"AABBCCDD", "11223344"}); err != nil {
		t.Fatal(err)
	}
	if err := a.Merge([]string{"11223344", "99887766"}); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		t.Fatal(err)
	}
	want := []string{"11223344", "99887766", "AABBCCDD"}
	if len(tags) != len(want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tags)
		}
	}
}

func TestAuditLog_NoRewriteWithoutNewTags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.json")
	a := NewAuditLog(path)
	if err := a.Merge([]string{"AABBCCDD"}); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Merge([]string{"AABBCCDD"}); err != nil {
		t.Fatal(err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("expected file untouched when nothing new was merged")
	}

	seen, err := a.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := seen["AABBCCDD"]; !ok || len(seen) != 1 {
		t.Fatalf("expected exactly AABBCCDD, got %v", seen)
	}
}
