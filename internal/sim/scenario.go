package sim

import (
	"fmt"
	"sort"
)

// Scenario is a deterministic world builder shared by tests and the headless
// runner. Units and sites are addressed by caller-chosen integer IDs.
type Scenario struct {
	World  *World
	SimLog *SimLog

	tuning    Tuning
	mapTiles  int
	seed      int64
	density   float64
	presenter Presenter

	units   map[int]Handle
	sites   map[int]SiteID
	gathers map[int]*GatherCycle
	errs    []error
}

// scenarioOptionKind controls the pass in which an option is applied.
type scenarioOptionKind int

const (
	scenarioOptInfra scenarioOptionKind = iota // tuning, map size, seed, terrain, verbose
	scenarioOptPlace                           // units and sites, after the grid is built
	scenarioOptOrder                           // gather and engage orders, after placement
)

// ScenarioOption is a builder function applied during NewScenario.
type ScenarioOption struct {
	kind scenarioOptionKind
	fn   func(*Scenario)
}

// WithTuning replaces the default tuning.
func WithTuning(t Tuning) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.tuning = t
		sc.mapTiles = t.MapTiles
	}}
}

// WithMapTiles sets the square map size in tiles.
func WithMapTiles(n int) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.mapTiles = n
	}}
}

// WithSeed sets the terrain seed.
func WithSeed(seed int64) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.seed = seed
	}}
}

// WithTerrain scatters forest at the given density. Tiles around placed
// units and sites are always cleared.
func WithTerrain(density float64) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.density = density
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.SimLog = NewSimLog(v)
	}}
}

// WithScenarioPresenter routes cues to p.
func WithScenarioPresenter(p Presenter) ScenarioOption {
	return ScenarioOption{scenarioOptInfra, func(sc *Scenario) {
		sc.presenter = p
	}}
}

// WithUnit spawns a unit of kind at tile (tx, ty) under id.
func WithUnit(id int, kind UnitKind, tx, ty int) ScenarioOption {
	return ScenarioOption{scenarioOptPlace, func(sc *Scenario) {
		t := Tile{X: tx, Y: ty}
		sc.World.grid.Carve(t, 1)
		sc.units[id] = sc.World.Spawn(kind, t).Handle()
	}}
}

// WithSite adds a site of kind at tile (tx, ty) under id.
func WithSite(id int, kind SiteKind, tx, ty int) ScenarioOption {
	return ScenarioOption{scenarioOptPlace, func(sc *Scenario) {
		t := Tile{X: tx, Y: ty}
		sc.World.grid.Carve(t, 1)
		sc.sites[id] = sc.World.AddSite(kind, t).ID
	}}
}

// WithGather orders worker unitID to gather at siteID.
func WithGather(unitID, siteID int) ScenarioOption {
	return ScenarioOption{scenarioOptOrder, func(sc *Scenario) {
		g, err := sc.World.IssueGather(sc.units[unitID], sc.sites[siteID])
		if err != nil {
			sc.errs = append(sc.errs, fmt.Errorf("gather unit %d site %d: %w", unitID, siteID, err))
			return
		}
		sc.gathers[unitID] = g
	}}
}

// WithEngagement points unit attackerID at unit targetID.
func WithEngagement(attackerID, targetID int) ScenarioOption {
	return ScenarioOption{scenarioOptOrder, func(sc *Scenario) {
		if !sc.World.Engage(sc.units[attackerID], sc.units[targetID]) {
			sc.errs = append(sc.errs, fmt.Errorf("engage %d → %d refused", attackerID, targetID))
		}
	}}
}

// NewScenario builds a world from the given options in ordered passes:
//  1. Infrastructure (tuning, map size, seed, terrain, verbose)
//  2. Build the grid and world
//  3. Units and sites
//  4. Orders
func NewScenario(opts ...ScenarioOption) *Scenario {
	sc := &Scenario{
		tuning:  DefaultTuning(),
		SimLog:  NewSimLog(false),
		seed:    1,
		units:   make(map[int]Handle),
		sites:   make(map[int]SiteID),
		gathers: make(map[int]*GatherCycle),
	}
	sc.mapTiles = sc.tuning.MapTiles
	for _, o := range opts {
		if o.kind == scenarioOptInfra {
			o.fn(sc)
		}
	}

	sc.tuning.MapTiles = sc.mapTiles
	grid := GenerateNavGrid(sc.mapTiles, sc.mapTiles, sc.seed, sc.density)
	wopts := []WorldOption{WithSimLog(sc.SimLog)}
	if sc.presenter != nil {
		wopts = append(wopts, WithPresenter(sc.presenter))
	}
	sc.World = NewWorld(sc.tuning, grid, wopts...)

	for _, o := range opts {
		if o.kind == scenarioOptPlace {
			o.fn(sc)
		}
	}
	for _, o := range opts {
		if o.kind == scenarioOptOrder {
			o.fn(sc)
		}
	}
	return sc
}

// Errs returns the orders that were refused during construction.
func (sc *Scenario) Errs() []error {
	return sc.errs
}

// Unit returns the unit registered under id, or nil if it is gone.
func (sc *Scenario) Unit(id int) *Unit {
	return sc.World.Unit(sc.units[id])
}

// Site returns the site registered under id, or nil.
func (sc *Scenario) Site(id int) *Site {
	return sc.World.sites.Get(sc.sites[id])
}

// Gather returns the cycle ordered for unit id, or nil.
func (sc *Scenario) Gather(id int) *GatherCycle {
	return sc.gathers[id]
}

// RunTicks advances the world n ticks.
func (sc *Scenario) RunTicks(n int) {
	for i := 0; i < n; i++ {
		sc.World.Step()
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which the predicate was satisfied, or -1.
func (sc *Scenario) RunUntil(predicate func(*Scenario) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		sc.World.Step()
		if predicate(sc) {
			return sc.World.tick
		}
	}
	return -1
}

// ScenarioSnapshot captures a lightweight state summary.
type ScenarioSnapshot struct {
	Tick   int
	Ledger LedgerSnapshot
	Units  []UnitSnapshot
}

// UnitSnapshot is a lightweight copy of a unit's state at a tick.
type UnitSnapshot struct {
	ID        int
	Label     string
	Faction   Faction
	X, Y      float64
	State     WorkState
	HitPoints float64
	Target    Handle
}

// Snapshot returns the current state of every scenario unit still registered,
// ordered by scenario ID.
func (sc *Scenario) Snapshot() ScenarioSnapshot {
	snap := ScenarioSnapshot{Tick: sc.World.tick, Ledger: sc.World.ledger.Snapshot()}
	ids := make([]int, 0, len(sc.units))
	for id := range sc.units {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		u := sc.Unit(id)
		if u == nil {
			continue
		}
		snap.Units = append(snap.Units, UnitSnapshot{
			ID:        id,
			Label:     u.label,
			Faction:   u.faction,
			X:         u.x,
			Y:         u.y,
			State:     u.state,
			HitPoints: u.stats.HitPoints,
			Target:    u.target,
		})
	}
	return snap
}

// --- Presets ---

// PresetNames lists the scenarios understood by Preset.
var PresetNames = []string{"skirmish", "economy", "mixed"}

// Preset builds one of the named demo scenarios. extra options are applied
// alongside the preset's own, e.g. a presenter.
func Preset(name string, t Tuning, seed int64, verbose bool, extra ...ScenarioOption) (*Scenario, error) {
	base := []ScenarioOption{WithTuning(t), WithSeed(seed), WithTerrain(0.25), WithVerbose(verbose)}
	base = append(base, extra...)
	switch name {
	case "skirmish":
		return NewScenario(append(base, skirmishOptions(20, 0)...)...), nil
	case "economy":
		return NewScenario(append(base, economyOptions(0)...)...), nil
	case "mixed":
		opts := append(base, skirmishOptions(20, 0)...)
		opts = append(opts, economyOptions(100)...)
		return NewScenario(opts...), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q (want one of %v)", name, PresetNames)
	}
}

// skirmishOptions lines up two fighting groups around column x, close enough
// that every ordered engagement sits inside its release band.
func skirmishOptions(x, idBase int) []ScenarioOption {
	return []ScenarioOption{
		WithUnit(idBase+1, KindFootman, x-2, 10),
		WithUnit(idBase+2, KindFootman, x-2, 12),
		WithUnit(idBase+3, KindElvenArcher, x-3, 11),
		WithUnit(idBase+4, KindGrunt, x+2, 10),
		WithUnit(idBase+5, KindGrunt, x+2, 12),
		WithUnit(idBase+6, KindTrollAxethrower, x+3, 11),
		WithEngagement(idBase+1, idBase+4),
		WithEngagement(idBase+2, idBase+5),
		WithEngagement(idBase+3, idBase+6),
		WithEngagement(idBase+4, idBase+1),
		WithEngagement(idBase+5, idBase+2),
		WithEngagement(idBase+6, idBase+3),
	}
}

// economyOptions places one camp per faction, each with two workers sent to
// its mine. idBase offsets the scenario IDs.
func economyOptions(idBase int) []ScenarioOption {
	return []ScenarioOption{
		WithSite(idBase+1, SiteGoldMine, 8, 30),
		WithSite(idBase+2, SiteTownHall, 14, 30),
		WithSite(idBase+3, SiteGoldMine, 40, 30),
		WithSite(idBase+4, SiteGreatHall, 34, 30),
		WithUnit(idBase+11, KindPeasant, 12, 32),
		WithUnit(idBase+12, KindPeasant, 12, 28),
		WithUnit(idBase+13, KindPeon, 36, 32),
		WithUnit(idBase+14, KindPeon, 36, 28),
		WithGather(idBase+11, idBase+1),
		WithGather(idBase+12, idBase+1),
		WithGather(idBase+13, idBase+3),
		WithGather(idBase+14, idBase+3),
	}
}
