package sim

// Facing is one of the eight directions a unit can be drawn in. Screen
// coordinates grow downward, so "down" is +y.
type Facing int

const (
	FacingDown Facing = iota
	FacingDownRight
	FacingRight
	FacingUpRight
	FacingUp
	FacingUpLeft
	FacingLeft
	FacingDownLeft
)

var facingNames = [...]string{
	FacingDown:      "down",
	FacingDownRight: "downRight",
	FacingRight:     "right",
	FacingUpRight:   "upRight",
	FacingUp:        "up",
	FacingUpLeft:    "upLeft",
	FacingLeft:      "left",
	FacingDownLeft:  "downLeft",
}

func (f Facing) String() string {
	if f < 0 || int(f) >= len(facingNames) {
		return "unknown"
	}
	return facingNames[f]
}

// FacingFromDelta classifies a displacement by the signs of its axes.
// It returns false for a zero displacement, which has no direction.
func FacingFromDelta(dx, dy float64) (Facing, bool) {
	switch {
	case dx > 0 && dy == 0:
		return FacingRight, true
	case dx > 0 && dy > 0:
		return FacingDownRight, true
	case dx == 0 && dy > 0:
		return FacingDown, true
	case dx < 0 && dy > 0:
		return FacingDownLeft, true
	case dx < 0 && dy == 0:
		return FacingLeft, true
	case dx < 0 && dy < 0:
		return FacingUpLeft, true
	case dx == 0 && dy < 0:
		return FacingUp, true
	case dx > 0 && dy < 0:
		return FacingUpRight, true
	}
	return 0, false
}

// Vector returns the unit step (each axis in -1..1) the facing points along.
func (f Facing) Vector() (int, int) {
	switch f {
	case FacingDown:
		return 0, 1
	case FacingDownRight:
		return 1, 1
	case FacingRight:
		return 1, 0
	case FacingUpRight:
		return 1, -1
	case FacingUp:
		return 0, -1
	case FacingUpLeft:
		return -1, -1
	case FacingLeft:
		return -1, 0
	case FacingDownLeft:
		return -1, 1
	}
	return 0, 0
}

// KiteOffset is the direction, opposite to the facing, in which a unit stands
// off from its target when closing into range.
func (f Facing) KiteOffset() (int, int) {
	x, y := f.Vector()
	return -x, -y
}

// --- Presentation cues ---

// Cue is the animation a unit is playing.
type Cue int

const (
	CueIdle Cue = iota
	CueWalking
	CueCarrying
	CueAttacking
	CueDying
)

func (c Cue) String() string {
	switch c {
	case CueIdle:
		return "idle"
	case CueWalking:
		return "walking"
	case CueCarrying:
		return "carrying"
	case CueAttacking:
		return "attacking"
	case CueDying:
		return "dying"
	default:
		return "unknown"
	}
}

// SiteCue is the animation a site is playing.
type SiteCue int

const (
	SiteCueIdle SiteCue = iota
	SiteCueWorking
)

func (c SiteCue) String() string {
	if c == SiteCueWorking {
		return "working"
	}
	return "normal"
}

// Presenter receives presentation commands. It is write-only: nothing it does
// feeds back into the simulation. Commands are only sent when a cue changes.
type Presenter interface {
	PlayUnit(h Handle, cue Cue, facing Facing)
	SwitchSite(id SiteID, cue SiteCue)
}

// NopPresenter discards every command.
type NopPresenter struct{}

func (NopPresenter) PlayUnit(Handle, Cue, Facing) {}
func (NopPresenter) SwitchSite(SiteID, SiteCue) {}
