package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// RequestMove plans a route from the unit's tile to (tileX, tileY). On
// success the route is stored and the unit starts transitioning; when the
// unit already stands on the goal tile it settles onto the tile origin
// instead. An infeasible request changes nothing.
func (u *Unit) RequestMove(tileX, tileY int) bool {
	if !u.Alive() {
		return false
	}
	ts := u.world.tuning.TileSize
	from := u.Tile()
	to := Tile{X: tileX, Y: tileY}

	if !u.paths.SetGoal(from, to) {
		u.logEntry("movement").WithFields(logrus.Fields{
			"from": from,
			"to":   to,
		}).Debug("Route infeasible.")
		return false
	}
	route := u.paths.DiscoverPath()
	if route == nil {
		return false
	}

	next, ok := route.Pop()
	if !ok {
		u.x, u.y = to.Origin(ts)
		u.finishRoute()
		return true
	}
	u.route = route
	u.goalX, u.goalY = next.Origin(ts)
	u.transitioning = true
	u.world.simLog.AddVerbose(u.world.tick, u.label, u.faction.String(), "move", "route",
		to.String(), float64(route.Remaining()+1))
	return true
}

// RequestMoveBy plans a route to the tile offset (dx, dy) from the unit's tile.
func (u *Unit) RequestMoveBy(dx, dy int) bool {
	t := u.Tile()
	return u.RequestMove(t.X+dx, t.Y+dy)
}

// Stop abandons the current route without touching the movement state.
func (u *Unit) Stop() {
	u.transitioning = false
	u.route = nil
}

// AdvanceTick moves the unit one step toward the current route node. Each
// axis advances independently by the unit's speed, so a diagonal step covers
// more ground than a straight one unless diagonal normalisation is enabled.
// It is a no-op when the unit is not transitioning or is dead.
func (u *Unit) AdvanceTick() {
	if !u.transitioning || !u.Alive() {
		return
	}

	dx := u.goalX - u.x
	dy := u.goalY - u.y
	sx, sy := u.stats.Speed, u.stats.Speed
	if dx != 0 && dy != 0 && u.world.tuning.Movement.NormalizeDiagonal {
		sx /= math.Sqrt2
		sy /= math.Sqrt2
	}
	u.x = stepAxis(u.x, u.goalX, sx)
	u.y = stepAxis(u.y, u.goalY, sy)

	if f, ok := FacingFromDelta(dx, dy); ok {
		u.present(u.travelCue(), f)
	}

	if u.x == u.goalX && u.y == u.goalY {
		if next, ok := u.route.Pop(); ok {
			u.goalX, u.goalY = next.Origin(u.world.tuning.TileSize)
			return
		}
		u.finishRoute()
	}
}

// finishRoute ends a walk. A unit walking to work starts working.
func (u *Unit) finishRoute() {
	u.Stop()
	if u.state == StateGoToWork {
		u.setState(StateWorking)
		u.selected = false
	}
}

// stepAxis moves pos toward goal by at most step, landing exactly on goal
// when it is within reach.
func stepAxis(pos, goal, step float64) float64 {
	switch d := goal - pos; {
	case d > step:
		return pos + step
	case d < -step:
		return pos - step
	default:
		return goal
	}
}
