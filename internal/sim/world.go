package sim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Warband/internal/logger"
)

// Command errors returned by World.
var (
	ErrUnknownUnit = errors.New("unknown or dead unit")
	ErrNotWorker   = errors.New("unit cannot gather")
	ErrUnknownSite = errors.New("unknown site")
	ErrNotResource = errors.New("site is not a resource node")
)

// World owns every piece of simulation state and drives it one fixed step at
// a time. It is not safe for concurrent use.
type World struct {
	tuning Tuning
	ledger *Ledger
	units  *Registry
	sites  *SiteRegistry
	grid   *NavGrid

	newPathfinder func() Pathfinder
	presenter     Presenter
	simLog        *SimLog

	gathers     []*GatherCycle
	gatherTicks int // working ticks per gather phase, fixed by tuning
	tick        int
	labels      [2]int // next label number per faction
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithPresenter routes cues to p instead of discarding them.
func WithPresenter(p Presenter) WorldOption {
	return func(w *World) { w.presenter = p }
}

// WithSimLog records events into sl.
func WithSimLog(sl *SimLog) WorldOption {
	return func(w *World) { w.simLog = sl }
}

// WithPathfinders replaces the grid path provider. fn is called once per
// spawned unit.
func WithPathfinders(fn func() Pathfinder) WorldOption {
	return func(w *World) { w.newPathfinder = fn }
}

// NewWorld creates an empty world. A nil grid is replaced by an open grid of
// tuning.MapTiles squared.
func NewWorld(t Tuning, grid *NavGrid, opts ...WorldOption) *World {
	if grid == nil {
		grid = NewNavGrid(t.MapTiles, t.MapTiles)
	}
	w := &World{
		tuning:      t,
		ledger:      NewLedger(t.Economy),
		units:       NewRegistry(),
		sites:       NewSiteRegistry(),
		grid:        grid,
		presenter:   NopPresenter{},
		gatherTicks: t.GatherTicks(),
	}
	w.newPathfinder = grid.NewPathfinder
	for _, opt := range opts {
		opt(w)
	}
	if w.simLog == nil {
		w.simLog = NewSimLog(false)
	}
	return w
}

// Spawn creates a unit of kind standing on tile.
func (w *World) Spawn(kind UnitKind, tile Tile) *Unit {
	f := kind.Faction()
	prefix := "A"
	if f == FactionHorde {
		prefix = "H"
	}
	label := fmt.Sprintf("%s%d", prefix, w.labels[f])
	w.labels[f]++

	u := newUnit(w, kind, label, tile)
	u.handle = w.units.Insert(u)
	w.simLog.Add(w.tick, label, f.String(), "state", "spawn",
		fmt.Sprintf("%s at %s", kind, tile), 0)
	w.logEntry("world").WithFields(logrus.Fields{
		"unit": label,
		"kind": kind.String(),
		"tile": tile.String(),
	}).Debug("Unit spawned.")
	return u
}

// AddSite registers a building or resource node.
func (w *World) AddSite(kind SiteKind, tile Tile) *Site {
	s := w.sites.Add(kind, tile)
	w.simLog.Add(w.tick, "--", "--", "state", "site",
		fmt.Sprintf("%s at %s", kind, tile), float64(s.ID))
	return s
}

// Engage points attacker at target. See Unit.Engage.
func (w *World) Engage(attacker, target Handle) bool {
	u := w.units.Resolve(attacker)
	if u == nil {
		return false
	}
	return u.Engage(target)
}

// IssueGather starts a gather cycle for worker at node, replacing any cycle
// the worker already runs. The cycle activates at once when a drop-off site
// exists and otherwise waits for one.
func (w *World) IssueGather(worker Handle, node SiteID) (*GatherCycle, error) {
	u := w.units.Resolve(worker)
	if u == nil || !u.Alive() {
		return nil, fmt.Errorf("gather %s: %w", worker, ErrUnknownUnit)
	}
	if !u.kind.IsWorker() {
		return nil, fmt.Errorf("gather %s (%s): %w", u.label, u.kind, ErrNotWorker)
	}
	site := w.sites.Get(node)
	if site == nil {
		return nil, fmt.Errorf("gather site %d: %w", node, ErrUnknownSite)
	}
	if !site.Kind.IsResource() {
		return nil, fmt.Errorf("gather site %d (%s): %w", node, site.Kind, ErrNotResource)
	}

	if prev := w.GatherFor(worker); prev != nil {
		prev.Cancel()
	}
	if u.target != NoUnit {
		u.disengage("gather_order")
	}

	g := newGatherCycle(w, u, site)
	w.gathers = append(w.gathers, g)
	g.Activate()
	return g, nil
}

// CancelGather cancels the cycle with the given ID.
func (w *World) CancelGather(id uuid.UUID) bool {
	for _, g := range w.gathers {
		if g.ID == id && !g.cancelled {
			g.Cancel()
			return true
		}
	}
	return false
}

// GatherFor returns the live cycle driving worker, or nil.
func (w *World) GatherFor(worker Handle) *GatherCycle {
	for _, g := range w.gathers {
		if g.worker == worker && !g.cancelled {
			return g
		}
	}
	return nil
}

// Remove deletes a unit. Every handle to it goes stale at once, so units
// targeting it disengage on their next combat step.
func (w *World) Remove(h Handle) bool {
	u := w.units.Resolve(h)
	if u == nil {
		return false
	}
	if g := w.GatherFor(h); g != nil {
		g.Cancel()
	}
	w.units.Remove(h)
	w.simLog.Add(w.tick, u.label, u.faction.String(), "state", "removed", u.kind.String(), 0)
	return true
}

// Step advances the world by one tick: auto-acquisition, every unit's
// Update, then every gather cycle's Update.
func (w *World) Step() {
	w.tick++
	if w.tuning.Combat.AutoAcquire {
		w.acquireTargets()
	}
	w.units.Each(func(u *Unit) { u.Update() })

	// Cycles created during this loop wait for the next tick.
	n := len(w.gathers)
	for i := 0; i < n; i++ {
		w.gathers[i].Update()
	}

	live := w.gathers[:0]
	for _, g := range w.gathers {
		if !g.cancelled {
			live = append(live, g)
		}
	}
	for i := len(live); i < len(w.gathers); i++ {
		w.gathers[i] = nil
	}
	w.gathers = live
}

// acquireTargets gives every idle, untargeted fighter the nearest idle enemy
// inside its range. Release happens in the combat step at range+margin.
func (w *World) acquireTargets() {
	units := w.units.Units()
	for _, u := range units {
		if !u.Alive() || u.kind.IsWorker() || u.state != StateIdle || u.target != NoUnit {
			continue
		}
		var best *Unit
		bestD := 0
		for _, o := range units {
			if o.faction == u.faction || !o.Alive() || o.state != StateIdle {
				continue
			}
			dx, dy := u.displacement(o)
			dx, dy = absInt(dx), absInt(dy)
			if dx > u.stats.Range || dy > u.stats.Range {
				continue
			}
			d := max(dx, dy)
			if best == nil || d < bestD {
				best, bestD = o, d
			}
		}
		if best != nil {
			u.Engage(best.handle)
		}
	}
}

func (w *World) switchSite(s *Site, cue SiteCue) {
	if s.cue == cue {
		return
	}
	s.cue = cue
	w.presenter.SwitchSite(s.ID, cue)
}

func (w *World) logEntry(component string) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": component,
		"tick":      w.tick,
	})
}

func (w *World) debugEnabled() bool {
	return logger.Log.IsLevelEnabled(logrus.DebugLevel)
}

// --- Read-only query surface ---

func (w *World) Tick() int { return w.tick }
func (w *World) Tuning() Tuning { return w.tuning }
func (w *World) Ledger() *Ledger { return w.ledger }
func (w *World) Units() *Registry { return w.units }
func (w *World) Sites() *SiteRegistry { return w.sites }
func (w *World) Grid() *NavGrid { return w.grid }
func (w *World) SimLog() *SimLog { return w.simLog }

// Unit resolves a handle.
func (w *World) Unit(h Handle) *Unit {
	return w.units.Resolve(h)
}

// Gathers returns the live gather cycles in issue order.
func (w *World) Gathers() []*GatherCycle {
	return w.gathers
}
