package sim

import (
	"strings"
	"testing"
)

func TestSimLogQueries(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(1, "A0", "alliance", "combat", "engage", "→ H0", 0)
	sl.Add(2, "A0", "alliance", "combat", "disengage", "out_of_reach", 0)
	sl.Add(3, "H0", "horde", "state", "death", "grunt died", 1.5)
	sl.AddVerbose(3, "H0", "horde", "move", "route", "(1,1)", 2)

	if sl.Len() != 3 {
		t.Fatalf("verbose entry recorded in quiet mode, len=%d", sl.Len())
	}
	if len(sl.Filter("combat", "")) != 2 {
		t.Fatal("category filter wrong")
	}
	if len(sl.FilterUnit("H0")) != 1 {
		t.Fatal("unit filter wrong")
	}
	if len(sl.FilterTickRange(2, 3)) != 2 {
		t.Fatal("tick range filter wrong")
	}
	if sl.CountCategory("combat", "engage") != 1 {
		t.Fatal("count wrong")
	}
	if e, ok := sl.LastOf("combat", ""); !ok || e.Key != "disengage" {
		t.Fatalf("LastOf returned %+v", e)
	}
	if _, ok := sl.LastOf("gather", "phase"); ok {
		t.Fatal("LastOf should report false when nothing matches")
	}
	if !sl.HasEntry("state", "death", "grunt") || sl.HasEntry("state", "death", "footman") {
		t.Fatal("HasEntry substring match wrong")
	}
	if !strings.Contains(sl.Format(), "[T=002] A0") {
		t.Fatalf("unexpected format:\n%s", sl.Format())
	}
	if strings.Contains(sl.FormatRange(3, 3), "engage") {
		t.Fatal("FormatRange leaked entries outside the range")
	}
}

func TestSimLogVerbose(t *testing.T) {
	sl := NewSimLog(true)
	sl.AddVerbose(1, "A0", "alliance", "move", "route", "(1,1)", 2)
	if sl.Len() != 1 || !sl.Verbose() {
		t.Fatal("verbose entry should be kept in verbose mode")
	}
}

func TestSimLogSummary(t *testing.T) {
	w := newTestWorld(10, 10)
	w.Spawn(KindFootman, Tile{X: 1, Y: 1})
	w.Spawn(KindPeon, Tile{X: 5, Y: 5})
	out := w.SimLog().Summary(w.Tick(), w.Units().Units(), w.Ledger().Snapshot())
	for _, want := range []string{"alliance: alive=1", "horde: alive=1", "Targets: none", "gold=5000"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
