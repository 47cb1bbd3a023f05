package sim

import "testing"

func TestAdvanceTick_IdleIsNoOp(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindPeasant, Tile{X: 2, Y: 3})
	x0, y0 := u.Position()
	for i := 0; i < 10; i++ {
		u.AdvanceTick()
	}
	x, y := u.Position()
	if x != x0 || y != y0 || u.Transitioning() {
		t.Fatalf("idle unit moved: (%.1f,%.1f) → (%.1f,%.1f)", x0, y0, x, y)
	}
}

func TestRequestMove_ArrivesExactly(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindPeasant, Tile{X: 0, Y: 0}) // speed 1
	if !u.RequestMove(3, 0) {
		t.Fatal("RequestMove on an open grid failed")
	}
	if !u.Transitioning() {
		t.Fatal("expected transitioning after a successful request")
	}
	if u.RouteRemaining() != 2 {
		t.Fatalf("expected 2 queued nodes behind the first, got %d", u.RouteRemaining())
	}

	for i := 0; i < 32; i++ {
		u.AdvanceTick()
	}
	if x, _ := u.Position(); x != 32 {
		t.Fatalf("expected x=32 after the first node, got %.1f", x)
	}
	if u.RouteRemaining() != 1 {
		t.Fatalf("arrival should pop the next node, %d left", u.RouteRemaining())
	}

	for i := 0; i < 63; i++ {
		u.AdvanceTick()
	}
	if !u.Transitioning() {
		t.Fatal("arrived one tick early")
	}
	u.AdvanceTick()
	x, y := u.Position()
	if x != 96 || y != 0 {
		t.Fatalf("expected (96,0), got (%.1f,%.1f)", x, y)
	}
	if u.Transitioning() || u.RouteRemaining() != 0 {
		t.Fatal("final arrival should clear the transition flag and the route")
	}
	if u.Facing() != FacingRight {
		t.Fatalf("expected facing right, got %s", u.Facing())
	}
}

func TestRequestMove_InfeasibleIsNoOp(t *testing.T) {
	w := newTestWorld(10, 10)
	w.Grid().SetBlocked(Tile{X: 5, Y: 5}, true)
	u := w.Spawn(KindFootman, Tile{X: 1, Y: 1})
	if u.RequestMove(5, 5) {
		t.Fatal("expected blocked goal to be refused")
	}
	if u.Transitioning() || u.RouteRemaining() != 0 || u.State() != StateIdle {
		t.Fatal("refused request changed unit state")
	}
}

func TestRequestMove_SameTileSnapsToOrigin(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindPeasant, Tile{X: 2, Y: 2})
	u.x, u.y = 70, 75
	if !u.RequestMove(2, 2) {
		t.Fatal("same-tile request should succeed")
	}
	x, y := u.Position()
	if x != 64 || y != 64 || u.Transitioning() {
		t.Fatalf("expected to settle at (64,64), got (%.1f,%.1f) moving=%v", x, y, u.Transitioning())
	}
}

func TestRequestMoveBy(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindFootman, Tile{X: 4, Y: 4})
	if !u.RequestMoveBy(-1, 2) {
		t.Fatal("relative move failed")
	}
	for i := 0; i < 200 && u.Transitioning(); i++ {
		u.AdvanceTick()
	}
	if u.Tile() != (Tile{X: 3, Y: 6}) {
		t.Fatalf("expected to end on (3,6), got %s", u.Tile())
	}
}

func TestAdvanceTick_DiagonalFullSpeedPerAxis(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindFootman, Tile{X: 0, Y: 0}) // speed 2
	u.RequestMove(1, 1)
	for i := 0; i < 16; i++ {
		u.AdvanceTick()
	}
	x, y := u.Position()
	if x != 32 || y != 32 || u.Transitioning() {
		t.Fatalf("expected full-speed diagonal to arrive in 16 ticks, at (%.1f,%.1f)", x, y)
	}
	if u.Facing() != FacingDownRight {
		t.Fatalf("expected facing downRight, got %s", u.Facing())
	}
}

func TestAdvanceTick_DiagonalNormalised(t *testing.T) {
	tun := DefaultTuning()
	tun.Movement.NormalizeDiagonal = true
	w := NewWorld(tun, NewNavGrid(10, 10))
	u := w.Spawn(KindFootman, Tile{X: 0, Y: 0})
	u.RequestMove(1, 1)
	for i := 0; i < 16; i++ {
		u.AdvanceTick()
	}
	if !u.Transitioning() {
		t.Fatal("normalised diagonal should not arrive as fast as full speed")
	}
	for i := 0; i < 10; i++ {
		u.AdvanceTick()
	}
	if x, y := u.Position(); x != 32 || y != 32 {
		t.Fatalf("expected exact arrival at (32,32), got (%.2f,%.2f)", x, y)
	}
}

func TestAdvanceTick_PromotesGoToWork(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindPeasant, Tile{X: 0, Y: 0})
	u.setState(StateGoToWork)
	u.selected = true
	u.RequestMove(1, 0)
	for i := 0; i < 32; i++ {
		u.AdvanceTick()
	}
	if u.State() != StateWorking {
		t.Fatalf("expected working on arrival, got %s", u.State())
	}
	if u.Selected() {
		t.Fatal("promotion to working should clear selection")
	}
}

func TestAdvanceTick_DeadUnitFrozen(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindPeasant, Tile{X: 0, Y: 0})
	u.RequestMove(3, 0)
	u.stats.HitPoints = 0
	u.AdvanceTick()
	if x, _ := u.Position(); x != 0 {
		t.Fatalf("dead unit moved to x=%.1f", x)
	}
	if u.RequestMove(1, 1) {
		t.Fatal("dead unit accepted a move")
	}
}

func TestAdvanceTick_WalkingCue(t *testing.T) {
	p := &recordingPresenter{}
	w := newTestWorld(10, 10, WithPresenter(p))
	u := w.Spawn(KindPeasant, Tile{X: 0, Y: 0})
	u.RequestMove(0, 2)
	u.AdvanceTick()
	if u.Cue() != CueWalking || u.Facing() != FacingDown {
		t.Fatalf("expected walking down, got %s %s", u.Cue(), u.Facing())
	}
	u.carrying = true
	u.AdvanceTick()
	if u.Cue() != CueCarrying {
		t.Fatalf("expected carrying cue, got %s", u.Cue())
	}
	if p.countUnit(CueWalking) != 1 {
		t.Fatalf("presenter should hear the walking cue once, got %d", p.countUnit(CueWalking))
	}
}

func TestSelect(t *testing.T) {
	w := newTestWorld(10, 10)
	u := w.Spawn(KindFootman, Tile{X: 1, Y: 1})
	if !u.Select(true) || !u.Selected() {
		t.Fatal("idle unit should be selectable")
	}
	u.setState(StateWorking)
	u.selected = false
	if u.Select(true) {
		t.Fatal("working unit should not be selectable")
	}
	if !u.Select(false) {
		t.Fatal("deselect always succeeds")
	}
}
