package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// gatherEpsilon absorbs float drift when converting the gather threshold into
// a whole number of ticks.
const gatherEpsilon = 1e-9

// GatherPhase is the leg of the gather loop a cycle is timing.
type GatherPhase int

const (
	PhaseAtNode    GatherPhase = iota // mining at the resource node
	PhaseAtDropOff                    // unloading at the drop-off site
)

func (p GatherPhase) String() string {
	switch p {
	case PhaseAtNode:
		return "at_node"
	case PhaseAtDropOff:
		return "at_dropoff"
	default:
		return "unknown"
	}
}

// GatherCycle drives one worker back and forth between a resource node and
// its faction's drop-off site, crediting gold on every delivery.
type GatherCycle struct {
	ID uuid.UUID

	worker  Handle
	label   string
	node    *Site
	dropOff *Site
	phase   GatherPhase
	ticks   int

	active    bool
	cancelled bool
	deferred  bool // a deferral has already been logged
	world     *World
}

func newGatherCycle(w *World, worker *Unit, node *Site) *GatherCycle {
	return &GatherCycle{
		ID:     uuid.New(),
		worker: worker.handle,
		label:  worker.label,
		node:   node,
		phase:  PhaseAtNode,
		world:  w,
	}
}

// Activate resolves the drop-off site and sends the worker to the node. When
// no drop-off exists yet nothing changes and the call reports false; the
// cycle retries on its next Update.
func (g *GatherCycle) Activate() bool {
	if g.active || g.cancelled {
		return g.active
	}
	w := g.world
	u := w.units.Resolve(g.worker)
	if u == nil || !u.Alive() {
		return false
	}

	drop := w.sites.Nearest(DropOffKind(u.faction), g.node.Tile)
	if drop == nil {
		if !g.deferred {
			g.deferred = true
			g.logEntry().WithField("want", DropOffKind(u.faction).String()).
				Info("No drop-off site yet, deferring gather.")
		}
		return false
	}

	g.dropOff = drop
	g.active = true
	g.phase = PhaseAtNode
	g.ticks = 0
	g.node.roster.Enlist(u.handle)

	u.selected = false
	u.carrying = false
	u.setState(StateGoToWork)
	u.RequestMove(g.node.Tile.X, g.node.Tile.Y)
	w.switchSite(g.node, SiteCueWorking)

	w.simLog.Add(w.tick, u.label, u.faction.String(), "gather", "activate",
		fmt.Sprintf("%s → %s", g.node.Kind, drop.Kind), 0)
	g.logEntry().WithFields(logrus.Fields{
		"node":     g.node.Tile.String(),
		"drop_off": drop.Tile.String(),
	}).Info("Gather cycle activated.")
	return true
}

// Tick advances the phase timer by one step. It only counts while the worker
// is WORKING and the node roster is occupied. When the threshold is reached
// the phase flips and the timer restarts at zero.
func (g *GatherCycle) Tick() {
	if !g.active || g.cancelled {
		return
	}
	w := g.world
	u := w.units.Resolve(g.worker)
	if u == nil || u.state != StateWorking || !g.node.roster.Occupied() {
		return
	}

	// Any worker busy at the node keeps it lit.
	if g.phase == PhaseAtNode {
		w.switchSite(g.node, SiteCueWorking)
	}

	g.ticks++
	if g.ticks < w.gatherTicks {
		return
	}
	g.ticks = 0

	switch g.phase {
	case PhaseAtNode:
		u.carrying = true
		u.setState(StateGoToWork)
		u.RequestMove(g.dropOff.Tile.X, g.dropOff.Tile.Y)
		g.phase = PhaseAtDropOff
		if !g.nodeBusy() {
			w.switchSite(g.node, SiteCueIdle)
		}
		w.simLog.Add(w.tick, u.label, u.faction.String(), "gather", "phase", g.phase.String(), 0)

	case PhaseAtDropOff:
		u.carrying = false
		u.setState(StateGoToWork)
		u.RequestMove(g.node.Tile.X, g.node.Tile.Y)
		payout := w.tuning.Gather.Payout
		w.ledger.Credit(Gold, payout)
		g.phase = PhaseAtNode
		w.switchSite(g.node, SiteCueWorking)
		w.simLog.Add(w.tick, u.label, u.faction.String(), "gather", "phase", g.phase.String(), 0)
		w.simLog.Add(w.tick, u.label, u.faction.String(), "economy", "gold",
			fmt.Sprintf("+%d → %d", payout, w.ledger.Gold()), float64(payout))
		g.logEntry().WithFields(logrus.Fields{
			"payout": payout,
			"gold":   w.ledger.Gold(),
		}).Debug("Gold delivered.")
	}
}

// nodeBusy reports whether another rostered worker is WORKING at the node.
func (g *GatherCycle) nodeBusy() bool {
	w := g.world
	for _, h := range g.node.roster.Workers() {
		if h == g.worker {
			continue
		}
		other := w.GatherFor(h)
		u := w.units.Resolve(h)
		if other != nil && other.phase == PhaseAtNode && u != nil && u.state == StateWorking {
			return true
		}
	}
	return false
}

// Update is the per-tick entry point: retry activation, otherwise tick. A
// cycle whose worker has died or been removed cancels itself.
func (g *GatherCycle) Update() {
	if g.cancelled {
		return
	}
	if u := g.world.units.Resolve(g.worker); u == nil || !u.Alive() {
		g.Cancel()
		return
	}
	if !g.active {
		g.Activate()
		return
	}
	g.Tick()
}

// Cancel stops the cycle immediately. The worker leaves the roster and, if
// still alive, drops back to IDLE where it stands.
func (g *GatherCycle) Cancel() {
	if g.cancelled {
		return
	}
	g.cancelled = true
	w := g.world
	g.node.roster.Release(g.worker)
	if !g.node.roster.Occupied() {
		w.switchSite(g.node, SiteCueIdle)
	}
	if u := w.units.Resolve(g.worker); u != nil && g.active {
		u.carrying = false
		if u.Alive() {
			u.Stop()
			u.setState(StateIdle)
		}
	}
	g.active = false
	w.simLog.Add(w.tick, g.label, "--", "gather", "cancel", g.ID.String(), 0)
	g.logEntry().Debug("Gather cycle cancelled.")
}

// Elapsed returns the phase timer in gather units.
func (g *GatherCycle) Elapsed() float64 {
	return float64(g.ticks) * g.world.tuning.Gather.Increment
}

func (g *GatherCycle) Worker() Handle { return g.worker }
func (g *GatherCycle) Node() *Site { return g.node }
func (g *GatherCycle) DropOff() *Site { return g.dropOff }
func (g *GatherCycle) Phase() GatherPhase { return g.phase }
func (g *GatherCycle) Ticks() int { return g.ticks }
func (g *GatherCycle) Active() bool { return g.active }
func (g *GatherCycle) Cancelled() bool { return g.cancelled }

func (g *GatherCycle) logEntry() *logrus.Entry {
	return g.world.logEntry("gather").WithFields(logrus.Fields{
		"gather": g.ID.String(),
		"unit":   g.label,
	})
}
