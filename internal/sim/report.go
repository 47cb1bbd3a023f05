package sim

import (
	"fmt"
	"sort"
	"strings"
)

// FactionReport aggregates one side of the battle.
type FactionReport struct {
	Faction Faction
	Alive   int
	Dead    int
	Damage  float64 // sum of fitness over every unit, living or dead
}

// UnitScore is one unit's damage dealt.
type UnitScore struct {
	Label   string
	Kind    UnitKind
	Fitness float64
	Alive   bool
}

// Report is an end-of-run summary of a world.
type Report struct {
	Tick           int
	Ledger         LedgerSnapshot
	Factions       [2]FactionReport
	Top            []UnitScore // highest fitness first
	GoldDeliveries int
	ActiveGathers  int
	Engagements    int
	Disengagements int
	FirstDeathTick int // -1 when nobody died
}

// BuildReport summarises w.
func BuildReport(w *World) Report {
	r := Report{
		Tick:           w.tick,
		Ledger:         w.ledger.Snapshot(),
		FirstDeathTick: -1,
	}
	r.Factions[FactionAlliance].Faction = FactionAlliance
	r.Factions[FactionHorde].Faction = FactionHorde

	w.units.Each(func(u *Unit) {
		fr := &r.Factions[u.faction]
		if u.Alive() {
			fr.Alive++
		} else {
			fr.Dead++
		}
		fr.Damage += u.stats.Fitness
		r.Top = append(r.Top, UnitScore{Label: u.label, Kind: u.kind, Fitness: u.stats.Fitness, Alive: u.Alive()})
	})
	sort.SliceStable(r.Top, func(i, j int) bool { return r.Top[i].Fitness > r.Top[j].Fitness })

	for _, g := range w.gathers {
		if g.active && !g.cancelled {
			r.ActiveGathers++
		}
	}

	sl := w.simLog
	r.GoldDeliveries = sl.CountCategory("economy", "gold")
	r.Engagements = sl.CountCategory("combat", "engage")
	r.Disengagements = sl.CountCategory("combat", "disengage")
	for _, e := range sl.Entries() {
		if e.Category == "state" && e.Key == "death" {
			r.FirstDeathTick = e.Tick
			break
		}
	}
	return r
}

// String renders the report as plain text suitable for a terminal or the
// clipboard.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Warband report at T=%d ---\n", r.Tick)
	fmt.Fprintf(&b, "ledger: %s\n", r.Ledger)
	for _, fr := range r.Factions {
		fmt.Fprintf(&b, "%-8s alive=%d dead=%d damage=%.2f\n", fr.Faction, fr.Alive, fr.Dead, fr.Damage)
	}
	fmt.Fprintf(&b, "gold_deliveries=%d active_gathers=%d engagements=%d disengagements=%d first_death=%d\n",
		r.GoldDeliveries, r.ActiveGathers, r.Engagements, r.Disengagements, r.FirstDeathTick)
	n := len(r.Top)
	if n > 5 {
		n = 5
	}
	for i := 0; i < n; i++ {
		s := r.Top[i]
		status := "alive"
		if !s.Alive {
			status = "dead"
		}
		fmt.Fprintf(&b, "  #%d %-4s %-16s fitness=%.2f %s\n", i+1, s.Label, s.Kind, s.Fitness, status)
	}
	return b.String()
}
