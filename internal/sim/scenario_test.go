package sim

import (
	"strings"
	"testing"
)

func TestScenario_PhasedOptions(t *testing.T) {
	// Orders listed before placement still see the placed units.
	sc := NewScenario(
		WithGather(1, 10),
		WithUnit(1, KindPeasant, 4, 4),
		WithSite(10, SiteGoldMine, 6, 4),
		WithSite(11, SiteTownHall, 2, 4),
		WithMapTiles(16),
	)
	if len(sc.Errs()) != 0 {
		t.Fatalf("unexpected order errors: %v", sc.Errs())
	}
	if sc.World.Grid().Cols() != 16 {
		t.Fatalf("expected a 16-tile map, got %d", sc.World.Grid().Cols())
	}
	if g := sc.Gather(1); g == nil || !g.Active() {
		t.Fatal("gather order should be active")
	}
	if sc.Site(10).Kind != SiteGoldMine {
		t.Fatal("site lookup by scenario ID failed")
	}
}

func TestScenario_RefusedOrdersRecorded(t *testing.T) {
	sc := NewScenario(
		WithUnit(1, KindFootman, 2, 2),
		WithUnit(2, KindFootman, 3, 2),
		WithSite(10, SiteGoldMine, 6, 4),
		WithEngagement(1, 2),
		WithGather(1, 10),
	)
	if len(sc.Errs()) != 2 {
		t.Fatalf("expected two refused orders, got %v", sc.Errs())
	}
}

func TestScenario_EconomyDelivers(t *testing.T) {
	sc := NewScenario(economyOptions(0)...)
	if len(sc.Errs()) != 0 {
		t.Fatalf("unexpected order errors: %v", sc.Errs())
	}
	tick := sc.RunUntil(func(s *Scenario) bool { return s.World.Ledger().Gold() > 5000 }, 3000)
	if tick < 0 {
		t.Fatalf("no gold delivered in 3000 ticks:\n%s", sc.SimLog.Summary(sc.World.Tick(), sc.World.Units().Units(), sc.World.Ledger().Snapshot()))
	}
	if (sc.World.Ledger().Gold()-5000)%100 != 0 {
		t.Fatalf("gold should move in whole payouts, got %d", sc.World.Ledger().Gold())
	}
}

func TestScenario_MeleeDuelEndsInDeath(t *testing.T) {
	sc := NewScenario(
		WithMapTiles(20),
		WithUnit(1, KindFootman, 5, 5),
		WithUnit(2, KindGrunt, 8, 5),
		WithEngagement(1, 2),
		WithEngagement(2, 1),
	)
	tick := sc.RunUntil(func(s *Scenario) bool {
		return s.SimLog.CountCategory("state", "death") > 0
	}, 2000)
	if tick < 0 {
		t.Fatalf("duel never produced a death:\n%s", sc.SimLog.Format())
	}
	snap := sc.Snapshot()
	if len(snap.Units) != 2 || snap.Tick != tick {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestPreset(t *testing.T) {
	for _, name := range PresetNames {
		sc, err := Preset(name, DefaultTuning(), 3, false)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if sc.World.Units().Len() == 0 {
			t.Fatalf("%s: no units spawned", name)
		}
		sc.RunTicks(50)
	}
	if _, err := Preset("siege", DefaultTuning(), 1, false); err == nil || !strings.Contains(err.Error(), "siege") {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}
