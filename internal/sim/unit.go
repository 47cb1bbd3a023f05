package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// WorkState is a unit's movement state.
type WorkState int

const (
	StateIdle         WorkState = iota // free to fight and be selected
	StateWaitingPlace                  // holding for a building placement
	StateGoToWork                      // walking to a work site
	StateWorking                       // at a work site, gather timer running
)

func (ws WorkState) String() string {
	switch ws {
	case StateIdle:
		return "idle"
	case StateWaitingPlace:
		return "waiting_place"
	case StateGoToWork:
		return "go_to_work"
	case StateWorking:
		return "working"
	default:
		return "unknown"
	}
}

// Unit is an autonomous actor on the battlefield.
type Unit struct {
	handle  Handle
	label   string
	kind    UnitKind
	faction Faction
	stats   Stats

	// Movement
	x, y          float64
	state         WorkState
	selected      bool
	transitioning bool
	goalX, goalY  float64 // continuous coordinate of the route node being walked to
	route         *Route
	paths         Pathfinder
	carrying      bool

	// Combat
	target     Handle
	prevAdjust [2]int // tile displacement seen on the previous combat tick
	shot       projectile

	// Presentation
	facing Facing
	cue    Cue
	dead   bool

	world *World
}

func newUnit(w *World, kind UnitKind, label string, tile Tile) *Unit {
	x, y := tile.Origin(w.tuning.TileSize)
	return &Unit{
		label:   label,
		kind:    kind,
		faction: kind.Faction(),
		stats:   kind.BaseStats(),
		x:       x,
		y:       y,
		state:   StateIdle,
		paths:   w.newPathfinder(),
		facing:  FacingDown,
		cue:     CueIdle,
		world:   w,
	}
}

// Update runs the unit's per-tick step: route following, death handling and
// then combat. Dead units only ever run the death check, which fires once.
func (u *Unit) Update() {
	if u.Alive() {
		if u.transitioning {
			u.AdvanceTick()
			if tgt := u.world.units.Resolve(u.target); tgt != nil && u.outOfRange(tgt) {
				// Chasing: drop the stale route so combat re-plans toward
				// the target's current tile this tick.
				u.Stop()
			}
		} else if u.target == NoUnit {
			u.present(CueIdle, u.facing)
		}
	}

	u.checkDeath()

	if u.Alive() {
		u.resolveCombat()
	}
}

// checkDeath runs the terminal death transition the first time hit points
// are found at or below zero.
func (u *Unit) checkDeath() {
	if u.dead || u.stats.HitPoints > 0 {
		return
	}
	u.dead = true
	u.selected = false
	u.Stop()
	u.target = NoUnit
	u.shot = projectile{}
	u.present(CueDying, u.facing)

	w := u.world
	freedFood := u.faction == w.tuning.Economy.FoodFaction
	if freedFood {
		w.ledger.Credit(Food, 1)
	}
	w.simLog.Add(w.tick, u.label, u.faction.String(), "state", "death",
		fmt.Sprintf("%s died at (%.0f,%.0f)", u.kind, u.x, u.y), u.stats.Fitness)
	u.logEntry("unit").WithFields(logrus.Fields{
		"fitness":    u.stats.Fitness,
		"food_freed": freedFood,
	}).Info("Unit died.")
}

func (u *Unit) setState(s WorkState) {
	if u.state == s {
		return
	}
	w := u.world
	w.simLog.Add(w.tick, u.label, u.faction.String(), "state", "change",
		fmt.Sprintf("%s → %s", u.state, s), 0)
	u.state = s
}

// present records the cue and facing and forwards changes to the presenter.
func (u *Unit) present(cue Cue, facing Facing) {
	if u.cue == cue && u.facing == facing {
		return
	}
	u.cue = cue
	u.facing = facing
	u.world.presenter.PlayUnit(u.handle, cue, facing)
}

func (u *Unit) travelCue() Cue {
	if u.carrying {
		return CueCarrying
	}
	return CueWalking
}

func (u *Unit) logEntry(component string) *logrus.Entry {
	return u.world.logEntry(component).WithFields(logrus.Fields{
		"unit":    u.label,
		"kind":    u.kind.String(),
		"faction": u.faction.String(),
	})
}

// Select sets the selection flag. Only living idle units can be selected;
// deselecting always succeeds.
func (u *Unit) Select(on bool) bool {
	if on && (!u.Alive() || u.state != StateIdle) {
		return false
	}
	u.selected = on
	return true
}

// --- Read-only query surface ---

func (u *Unit) Handle() Handle { return u.handle }
func (u *Unit) Label() string { return u.label }
func (u *Unit) Kind() UnitKind { return u.kind }
func (u *Unit) Faction() Faction { return u.faction }
func (u *Unit) Stats() Stats { return u.stats }
func (u *Unit) HitPoints() float64 { return u.stats.HitPoints }
func (u *Unit) State() WorkState { return u.state }
func (u *Unit) Selected() bool { return u.selected }
func (u *Unit) Transitioning() bool { return u.transitioning }
func (u *Unit) Target() Handle { return u.target }
func (u *Unit) Facing() Facing { return u.facing }
func (u *Unit) Cue() Cue { return u.cue }
func (u *Unit) Carrying() bool { return u.carrying }
func (u *Unit) Position() (float64, float64) { return u.x, u.y }

// Alive reports whether the unit still has hit points.
func (u *Unit) Alive() bool {
	return u.stats.HitPoints > 0
}

// Dead reports whether the death transition has run.
func (u *Unit) Dead() bool {
	return u.dead
}

// Tile returns the tile containing the unit's position.
func (u *Unit) Tile() Tile {
	return TileAt(u.x, u.y, u.world.tuning.TileSize)
}

// RouteRemaining returns how many route nodes are queued after the current goal.
func (u *Unit) RouteRemaining() int {
	return u.route.Remaining()
}

// Goal returns the continuous coordinate currently being walked to.
func (u *Unit) Goal() (float64, float64, bool) {
	return u.goalX, u.goalY, u.transitioning
}
