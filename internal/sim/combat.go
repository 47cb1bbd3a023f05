package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// projectile is the in-flight missile of a ranged unit. Origin and target
// position are captured when a shot starts and recaptured after each impact.
type projectile struct {
	active   bool
	captured bool
	x, y     float64 // current position
	tx, ty   float64 // captured target position
	angle    float64 // radians, for drawing
}

// Projectile is a read-only view of a missile in flight.
type Projectile struct {
	X, Y   float64
	Angle  float64
	Style  AttackStyle
	Target Handle
}

// Projectile returns the unit's missile while one is in flight.
func (u *Unit) Projectile() (Projectile, bool) {
	if !u.shot.active {
		return Projectile{}, false
	}
	return Projectile{
		X:      u.shot.x,
		Y:      u.shot.y,
		Angle:  u.shot.angle,
		Style:  u.kind.Style(),
		Target: u.target,
	}, true
}

// Engage makes h the unit's combat target, replacing any previous one.
// Dead units, self-targeting, allies and stale or dead targets are refused.
func (u *Unit) Engage(h Handle) bool {
	if !u.Alive() || h == u.handle {
		return false
	}
	tgt := u.world.units.Resolve(h)
	if tgt == nil || !tgt.Alive() || tgt.faction == u.faction {
		return false
	}
	if u.target == h {
		return true
	}
	u.target = h
	u.shot = projectile{}
	u.prevAdjust = [2]int{}
	w := u.world
	w.simLog.Add(w.tick, u.label, u.faction.String(), "combat", "engage",
		fmt.Sprintf("→ %s", tgt.label), 0)
	return true
}

// Disengage drops the current target, if any.
func (u *Unit) Disengage() {
	if u.target != NoUnit {
		u.disengage("ordered")
	}
}

// displacement is the integer tile offset from u to tgt, truncated toward zero.
func (u *Unit) displacement(tgt *Unit) (int, int) {
	ts := u.world.tuning.TileSize
	return (int(tgt.x) - int(u.x)) / ts, (int(tgt.y) - int(u.y)) / ts
}

func (u *Unit) outOfRange(tgt *Unit) bool {
	adjX, adjY := u.displacement(tgt)
	return absInt(adjX) > u.stats.Range || absInt(adjY) > u.stats.Range
}

// dampOscillation suppresses a pathing flip-flop at the diagonal boundary:
// a (5,6) displacement straight after a (6,5) one is treated as (4,4).
func dampOscillation(adjX, adjY int, prev [2]int) (int, int) {
	if adjX == 5 && adjY == 6 && prev[0] == 6 && prev[1] == 5 {
		return 4, 4
	}
	return adjX, adjY
}

// resolveCombat evaluates the engagement once: close in or attack, then
// decide whether to let go of the target.
func (u *Unit) resolveCombat() {
	if u.target == NoUnit {
		return
	}
	tgt := u.world.units.Resolve(u.target)
	if tgt == nil {
		u.disengage("target_removed")
		return
	}

	c := u.world.tuning.Combat
	rng := u.stats.Range

	dx, dy := u.displacement(tgt)
	adjX, adjY := dampOscillation(dx, dy, u.prevAdjust)

	if !u.shot.active {
		u.shot.x, u.shot.y = u.x, u.y
	}

	if absInt(adjX) > rng || absInt(adjY) > rng {
		u.closeIn(tgt)
	} else {
		u.attack(tgt, adjX, adjY)
	}

	u.prevAdjust = [2]int{adjX, adjY}

	// Hysteresis: targets are picked up within range but only dropped once
	// they reach range+margin tiles away.
	limit := rng + c.DisengageMargin
	var reason string
	switch {
	case tgt.stats.HitPoints <= 0:
		reason = "target_dead"
	case u.stats.HitPoints <= 0:
		reason = "self_dead"
	case tgt.state != StateIdle:
		reason = "target_busy"
	case absInt(adjX) >= limit || absInt(adjY) >= limit:
		reason = "out_of_reach"
	default:
		return
	}
	u.disengage(reason)
}

// closeIn walks toward a point range tiles off the target, on the side the
// unit is facing from.
func (u *Unit) closeIn(tgt *Unit) {
	ts := float64(u.world.tuning.TileSize)
	kx, ky := u.facing.KiteOffset()
	rng := float64(u.stats.Range)
	tx := int(math.Max(0, tgt.x/ts+rng*float64(kx)))
	ty := int(math.Max(0, tgt.y/ts+rng*float64(ky)))
	u.RequestMove(tx, ty)
	u.present(u.travelCue(), u.facing)

	if u.kind.Style().Ranged() {
		u.shot = projectile{x: u.x, y: u.y, tx: tgt.x, ty: tgt.y, captured: true}
	}
}

func (u *Unit) attack(tgt *Unit, adjX, adjY int) {
	if u.kind.Style().Ranged() {
		u.fire(tgt)
	} else {
		u.strike(tgt)
	}
	facing := u.facing
	if f, ok := FacingFromDelta(float64(adjX), float64(adjY)); ok {
		facing = f
	}
	u.present(CueAttacking, facing)
}

// fire advances the projectile one step and lands damage on arrival.
func (u *Unit) fire(tgt *Unit) {
	c := u.world.tuning.Combat
	s := &u.shot
	if !s.captured {
		s.tx, s.ty = tgt.x, tgt.y
		s.captured = true
	}
	u.Stop()
	s.active = true

	if u.kind.Style() == AttackSpinning {
		s.angle += c.SpinDelta
	} else {
		s.angle = math.Atan2(math.Abs(u.y-tgt.y), math.Abs(u.x-tgt.x))
	}

	dx, dy := s.tx-s.x, s.ty-s.y
	if dist := math.Hypot(dx, dy); dist > c.ProjectileStep {
		s.x += dx / dist * c.ProjectileStep
		s.y += dy / dist * c.ProjectileStep
	} else {
		s.x, s.y = s.tx, s.ty
	}

	if math.Hypot(s.tx-s.x, s.ty-s.y) <= c.ProjectileArrival {
		s.angle = 0
		s.x, s.y = u.x, u.y
		s.tx, s.ty = tgt.x, tgt.y
		u.strike(tgt)
	}
}

// strike applies one landed attack.
func (u *Unit) strike(tgt *Unit) {
	reduce := DamageReduction(u.stats, tgt.stats.Armor, u.world.tuning.Combat)
	tgt.stats.HitPoints -= reduce
	u.stats.Fitness += reduce

	w := u.world
	w.simLog.AddVerbose(w.tick, u.label, u.faction.String(), "combat", "hit",
		fmt.Sprintf("%s -%.2f → %.2f", tgt.label, reduce, tgt.stats.HitPoints), reduce)
	if w.debugEnabled() {
		u.logEntry("combat").WithFields(logrus.Fields{
			"target":    tgt.label,
			"reduce":    reduce,
			"target_hp": tgt.stats.HitPoints,
		}).Debug("Attack landed.")
	}
}

func (u *Unit) disengage(reason string) {
	w := u.world
	w.simLog.Add(w.tick, u.label, u.faction.String(), "combat", "disengage", reason, 0)
	u.target = NoUnit
	u.shot = projectile{}
	u.prevAdjust = [2]int{}
	if u.transitioning {
		u.present(u.travelCue(), u.facing)
	} else {
		u.present(CueIdle, u.facing)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
