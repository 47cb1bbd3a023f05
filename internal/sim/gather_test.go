package sim

import (
	"errors"
	"math"
	"testing"
)

// sharedTileWorld puts a mine, a town hall and a peasant on the same tile so
// the worker never has to walk.
func sharedTileWorld(t *testing.T, p Presenter) (*World, *Unit, *Site, *GatherCycle) {
	t.Helper()
	opts := []WorldOption{}
	if p != nil {
		opts = append(opts, WithPresenter(p))
	}
	w := newTestWorld(20, 20, opts...)
	mine := w.AddSite(SiteGoldMine, Tile{X: 5, Y: 5})
	w.AddSite(SiteTownHall, Tile{X: 5, Y: 5})
	u := w.Spawn(KindPeasant, Tile{X: 5, Y: 5})
	g, err := w.IssueGather(u.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("IssueGather: %v", err)
	}
	return w, u, mine, g
}

func TestGather_FullCycle(t *testing.T) {
	p := &recordingPresenter{}
	w, u, mine, g := sharedTileWorld(t, p)

	if !g.Active() || g.Phase() != PhaseAtNode {
		t.Fatal("expected immediate activation at the node")
	}
	if u.State() != StateWorking {
		t.Fatalf("worker on the node tile should start working at once, got %s", u.State())
	}
	if !mine.Roster().Has(u.Handle()) {
		t.Fatal("worker should be enlisted in the mine roster")
	}

	for i := 0; i < 99; i++ {
		w.Step()
	}
	if g.Phase() != PhaseAtNode || g.Ticks() != 99 {
		t.Fatalf("expected 99 ticks at node, got phase=%s ticks=%d", g.Phase(), g.Ticks())
	}
	w.Step()
	if g.Phase() != PhaseAtDropOff || g.Ticks() != 0 {
		t.Fatalf("expected flip to drop-off with a reset timer, got phase=%s ticks=%d", g.Phase(), g.Ticks())
	}
	if !u.Carrying() {
		t.Fatal("worker should carry gold to the drop-off")
	}
	if w.Ledger().Gold() != 5000 {
		t.Fatalf("no gold before delivery, got %d", w.Ledger().Gold())
	}
	if mine.Cue() != SiteCueIdle {
		t.Fatal("mine should go idle while the worker is away")
	}

	for i := 0; i < 100; i++ {
		w.Step()
	}
	if g.Phase() != PhaseAtNode || g.Ticks() != 0 {
		t.Fatalf("expected flip back to node, got phase=%s ticks=%d", g.Phase(), g.Ticks())
	}
	if w.Ledger().Gold() != 5100 {
		t.Fatalf("expected exactly +100 gold, got %d", w.Ledger().Gold())
	}
	if u.Carrying() {
		t.Fatal("delivery should empty the worker's hands")
	}
	if mine.Cue() != SiteCueWorking {
		t.Fatal("mine should show working again")
	}
	if len(p.sites) != 3 {
		t.Fatalf("expected working/idle/working site cues, got %v", p.sites)
	}
}

func TestGather_Elapsed(t *testing.T) {
	w, _, _, g := sharedTileWorld(t, nil)
	for i := 0; i < 50; i++ {
		w.Step()
	}
	if math.Abs(g.Elapsed()-5.0) > 1e-9 {
		t.Fatalf("expected elapsed 5.0, got %.6f", g.Elapsed())
	}
}

func TestGather_DefersWithoutDropOff(t *testing.T) {
	w := newTestWorld(20, 20)
	mine := w.AddSite(SiteGoldMine, Tile{X: 5, Y: 5})
	w.AddSite(SiteGreatHall, Tile{X: 8, Y: 5}) // wrong faction
	u := w.Spawn(KindPeasant, Tile{X: 2, Y: 2})
	g, err := w.IssueGather(u.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("IssueGather: %v", err)
	}
	for i := 0; i < 10; i++ {
		w.Step()
	}
	if g.Active() || u.State() != StateIdle || mine.Roster().Occupied() || u.Transitioning() {
		t.Fatal("gather without a drop-off must not change anything")
	}

	w.AddSite(SiteTownHall, Tile{X: 9, Y: 9})
	w.Step()
	if !g.Active() {
		t.Fatal("gather should activate once a drop-off exists")
	}
	if g.DropOff().Kind != SiteTownHall {
		t.Fatalf("resolved wrong drop-off %s", g.DropOff().Kind)
	}
	if u.State() != StateGoToWork || !u.Transitioning() {
		t.Fatalf("worker should walk to the node, got %s", u.State())
	}
}

func TestGather_TimerWaitsForArrival(t *testing.T) {
	w := newTestWorld(20, 20)
	mine := w.AddSite(SiteGoldMine, Tile{X: 8, Y: 5})
	w.AddSite(SiteTownHall, Tile{X: 2, Y: 5})
	u := w.Spawn(KindPeasant, Tile{X: 2, Y: 5})
	g, _ := w.IssueGather(u.Handle(), mine.ID)

	for i := 0; i < 50; i++ {
		w.Step()
	}
	if g.Ticks() != 0 || u.State() != StateGoToWork {
		t.Fatalf("timer must not run while walking: ticks=%d state=%s", g.Ticks(), u.State())
	}

	arrived := -1
	for i := 0; i < 400; i++ {
		w.Step()
		if u.State() == StateWorking {
			arrived = w.Tick()
			break
		}
	}
	if arrived < 0 {
		t.Fatal("worker never reached the mine")
	}
	if u.Tile() != mine.Tile {
		t.Fatalf("worker working away from the mine at %s", u.Tile())
	}
}

func TestGather_EmptyRosterHoldsTimer(t *testing.T) {
	w, u, mine, g := sharedTileWorld(t, nil)
	w.Step()
	mine.Roster().Release(u.Handle())
	for i := 0; i < 20; i++ {
		w.Step()
	}
	if g.Ticks() != 1 {
		t.Fatalf("timer must hold while the roster is empty, ticks=%d", g.Ticks())
	}
}

func TestGather_CommandErrors(t *testing.T) {
	w := newTestWorld(20, 20)
	mine := w.AddSite(SiteGoldMine, Tile{X: 5, Y: 5})
	hall := w.AddSite(SiteTownHall, Tile{X: 8, Y: 5})
	foot := w.Spawn(KindFootman, Tile{X: 1, Y: 1})
	peasant := w.Spawn(KindPeasant, Tile{X: 2, Y: 1})

	if _, err := w.IssueGather(foot.Handle(), mine.ID); !errors.Is(err, ErrNotWorker) {
		t.Fatalf("expected ErrNotWorker, got %v", err)
	}
	if _, err := w.IssueGather(peasant.Handle(), 999); !errors.Is(err, ErrUnknownSite) {
		t.Fatalf("expected ErrUnknownSite, got %v", err)
	}
	if _, err := w.IssueGather(peasant.Handle(), hall.ID); !errors.Is(err, ErrNotResource) {
		t.Fatalf("expected ErrNotResource, got %v", err)
	}
	h := peasant.Handle()
	w.Remove(h)
	if _, err := w.IssueGather(h, mine.ID); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if len(w.Gathers()) != 0 {
		t.Fatal("failed commands must not create cycles")
	}
}

func TestGather_DeadWorkerCancels(t *testing.T) {
	w, u, mine, g := sharedTileWorld(t, nil)
	w.Step()
	u.stats.HitPoints = 0
	w.Step()
	if !g.Cancelled() {
		t.Fatal("cycle should cancel itself when its worker dies")
	}
	if mine.Roster().Occupied() {
		t.Fatal("dead worker should leave the roster")
	}
	if len(w.Gathers()) != 0 {
		t.Fatal("cancelled cycle should be compacted away")
	}
	if w.Ledger().Food() != 6 {
		t.Fatalf("alliance worker death should still free food, got %d", w.Ledger().Food())
	}
}

func TestGather_CancelReturnsWorkerToIdle(t *testing.T) {
	w, u, mine, g := sharedTileWorld(t, nil)
	w.Step()
	if !w.CancelGather(g.ID) {
		t.Fatal("cancel by ID failed")
	}
	if w.CancelGather(g.ID) {
		t.Fatal("second cancel should report false")
	}
	if u.State() != StateIdle || mine.Roster().Occupied() || mine.Cue() != SiteCueIdle {
		t.Fatal("cancel should idle the worker and empty the roster")
	}
	gold := w.Ledger().Gold()
	for i := 0; i < 300; i++ {
		w.Step()
	}
	if w.Ledger().Gold() != gold {
		t.Fatal("cancelled cycle kept paying out")
	}
}

func TestGather_ReissueReplacesCycle(t *testing.T) {
	w, u, mine, g := sharedTileWorld(t, nil)
	g2, err := w.IssueGather(u.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if !g.Cancelled() || g2.Cancelled() || g.ID == g2.ID {
		t.Fatal("reissue should cancel the old cycle and keep the new one")
	}
	if w.GatherFor(u.Handle()) != g2 {
		t.Fatal("GatherFor should return the new cycle")
	}
	if !mine.Roster().Has(u.Handle()) {
		t.Fatal("new cycle should re-enlist the worker")
	}
}

func TestGather_HordeUsesGreatHall(t *testing.T) {
	w := newTestWorld(20, 20)
	mine := w.AddSite(SiteGoldMine, Tile{X: 5, Y: 5})
	w.AddSite(SiteTownHall, Tile{X: 5, Y: 5})
	great := w.AddSite(SiteGreatHall, Tile{X: 7, Y: 5})
	peon := w.Spawn(KindPeon, Tile{X: 5, Y: 5})
	g, _ := w.IssueGather(peon.Handle(), mine.ID)
	if g.DropOff() != great {
		t.Fatal("peon should deliver to the great hall")
	}
}

func TestGatherTicks(t *testing.T) {
	tun := DefaultTuning()
	if n := tun.GatherTicks(); n != 100 {
		t.Fatalf("expected 100 ticks per phase, got %d", n)
	}
	tun.Gather.Increment = 0.25
	tun.Gather.Threshold = 1
	if n := tun.GatherTicks(); n != 4 {
		t.Fatalf("expected 4 ticks, got %d", n)
	}
	tun.Gather.Increment = 0.001
	tun.Gather.Threshold = 10
	if n := tun.GatherTicks(); n != 10000 {
		t.Fatalf("expected 10000 ticks, got %d", n)
	}
}

func TestGatherTicks_FixedAtWorldCreation(t *testing.T) {
	tun := DefaultTuning()
	tun.Gather.Increment = 0.5
	tun.Gather.Threshold = 2
	w := NewWorld(tun, NewNavGrid(10, 10))
	if w.gatherTicks != 4 {
		t.Fatalf("expected the world to hold 4 ticks per phase, got %d", w.gatherTicks)
	}
	mine := w.AddSite(SiteGoldMine, Tile{X: 3, Y: 3})
	w.AddSite(SiteTownHall, Tile{X: 3, Y: 3})
	u := w.Spawn(KindPeasant, Tile{X: 3, Y: 3})
	g, err := w.IssueGather(u.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("IssueGather: %v", err)
	}
	for i := 0; i < 4; i++ {
		w.Step()
	}
	if g.Phase() != PhaseAtDropOff {
		t.Fatalf("expected a flip after 4 working ticks, got %s", g.Phase())
	}
}

func TestGather_MineStaysLitWhileAnotherWorkerMines(t *testing.T) {
	p := &recordingPresenter{}
	w := newTestWorld(20, 20, WithPresenter(p))
	mine := w.AddSite(SiteGoldMine, Tile{X: 5, Y: 5})
	w.AddSite(SiteTownHall, Tile{X: 12, Y: 5})
	a := w.Spawn(KindPeasant, Tile{X: 5, Y: 5})
	b := w.Spawn(KindPeasant, Tile{X: 5, Y: 5})

	ga, err := w.IssueGather(a.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("IssueGather a: %v", err)
	}
	for i := 0; i < 50; i++ {
		w.Step()
	}
	gb, err := w.IssueGather(b.Handle(), mine.ID)
	if err != nil {
		t.Fatalf("IssueGather b: %v", err)
	}
	for i := 0; i < 60; i++ {
		w.Step()
	}

	if ga.Phase() != PhaseAtDropOff || gb.Phase() != PhaseAtNode {
		t.Fatalf("expected a hauling and b mining, got a=%s b=%s", ga.Phase(), gb.Phase())
	}
	if b.State() != StateWorking || mine.Roster().Len() != 2 {
		t.Fatalf("expected b working with both rostered, got state=%s roster=%d", b.State(), mine.Roster().Len())
	}
	if mine.Cue() != SiteCueWorking {
		t.Fatalf("mine went %s while b is still working at it", mine.Cue())
	}
	for _, c := range p.sites {
		if c == SiteCueIdle {
			t.Fatalf("mine switched idle while occupied: %v", p.sites)
		}
	}

	// b leaves at its own flip; a is still on the road, so the mine goes dark.
	for i := 0; i < 45; i++ {
		w.Step()
	}
	if gb.Phase() != PhaseAtDropOff || a.State() == StateWorking {
		t.Fatalf("expected both away from the mine, got b=%s a=%s", gb.Phase(), a.State())
	}
	if mine.Cue() != SiteCueIdle {
		t.Fatalf("expected idle mine with nobody working there, got %s", mine.Cue())
	}
}
