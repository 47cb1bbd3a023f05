package game

import (
	"fmt"

	"github.com/Garsondee/Warband/internal/sim"
)

// feedPresenter turns simulation cues into feed lines. Cues that change
// every few ticks (walking, idle) are left out to keep the feed readable.
type feedPresenter struct {
	world *sim.World
	feed  *Feed

	unitCues int
	siteCues int
}

func newFeedPresenter(feed *Feed) *feedPresenter {
	return &feedPresenter{feed: feed}
}

// bind attaches the world whose handles the presenter resolves and replays
// the current site cues, which were switched before a world was attached.
func (p *feedPresenter) bind(w *sim.World) {
	p.world = w
	for _, s := range w.Sites().All() {
		if s.Cue() == sim.SiteCueWorking {
			p.SwitchSite(s.ID, s.Cue())
		}
	}
}

func (p *feedPresenter) PlayUnit(h sim.Handle, cue sim.Cue, facing sim.Facing) {
	p.unitCues++
	if p.world == nil {
		return
	}
	u := p.world.Unit(h)
	if u == nil {
		return
	}
	var msg string
	switch cue {
	case sim.CueAttacking:
		msg = fmt.Sprintf("attacks facing %s", facing)
	case sim.CueDying:
		msg = fmt.Sprintf("%s falls", u.Kind())
	case sim.CueCarrying:
		msg = "hauls gold"
	default:
		return
	}
	p.feed.Add(p.world.Tick(), u.Label(), u.Faction(), msg)
}

func (p *feedPresenter) SwitchSite(id sim.SiteID, cue sim.SiteCue) {
	p.siteCues++
	if p.world == nil {
		return
	}
	s := p.world.Sites().Get(id)
	if s == nil {
		return
	}
	p.feed.AddWorld(p.world.Tick(), fmt.Sprintf("%s %s %s", s.Kind, s.Tile, cue))
}
