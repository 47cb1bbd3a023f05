package sim

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLogZstdRoundTrip(t *testing.T) {
	sc := NewScenario(
		WithMapTiles(20),
		WithUnit(1, KindFootman, 5, 5),
		WithUnit(2, KindGrunt, 6, 5),
	)
	sc.RunTicks(20)
	entries := sc.SimLog.Entries()
	if len(entries) == 0 {
		t.Fatal("expected some log entries")
	}

	var buf bytes.Buffer
	if err := WriteLogZstd(&buf, entries); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadLogZstd(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d changed: %+v vs %+v", i, got[i], entries[i])
		}
	}
}

func TestExportLog(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(4, "H1", "horde", "economy", "gold", "+100 → 5100", 100)
	path := filepath.Join(t.TempDir(), "events.jsonl.zst")
	if err := sl.ExportLog(path); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	got, err := ReadLogZstd(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].NumVal != 100 || got[0].Unit != "H1" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestReadLogZstd_Garbage(t *testing.T) {
	if _, err := ReadLogZstd(bytes.NewReader([]byte("not zstd at all"))); err == nil {
		t.Fatal("expected an error for non-zstd input")
	}
}
