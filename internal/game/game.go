package game

import (
	"fmt"
	"image/color"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Warband/internal/logger"
	"github.com/Garsondee/Warband/internal/sim"
)

// borderWidth is the pixel gap between the window edge and the battlefield.
const borderWidth = 24

// viewScale maps world pixels to screen pixels.
const viewScale = 0.5

// speeds are the selectable simulation multipliers, 0 = paused.
var speeds = []float64{0, 0.5, 1, 2, 4}

// Options selects what the viewer runs.
type Options struct {
	Tuning   sim.Tuning
	Scenario string
	Seed     int64
}

// Game is the ebiten front end around a sim.World.
type Game struct {
	width  int
	height int
	viewW  int // battlefield size on screen
	viewH  int
	offX   int
	offY   int

	scenario  *sim.Scenario
	world     *sim.World
	feed      *Feed
	presenter *feedPresenter
	tileSize  int

	// Offscreen buffer for the full battlefield, scaled on blit.
	worldBuf *ebiten.Image

	showHUD        bool
	prevKeys       map[ebiten.Key]bool
	prevMouseLeft  bool
	prevMouseRight bool
	dragging       bool
	dragX, dragY   float64 // world-space drag anchor

	simSpeed  float64
	tickAccum float64
	lastGold  int
}

// New builds the viewer and its world.
func New(opts Options) (*Game, error) {
	feed := NewFeed()
	presenter := newFeedPresenter(feed)
	sc, err := sim.Preset(opts.Scenario, opts.Tuning, opts.Seed, false, sim.WithScenarioPresenter(presenter))
	if err != nil {
		return nil, err
	}
	w := sc.World
	presenter.bind(w)

	ts := opts.Tuning.TileSize
	worldPx := w.Grid().Cols() * ts
	worldPy := w.Grid().Rows() * ts
	viewW := int(float64(worldPx) * viewScale)
	viewH := int(float64(worldPy) * viewScale)

	g := &Game{
		width:     borderWidth + viewW + borderWidth + feedPanelWidth,
		height:    borderWidth + viewH + borderWidth,
		viewW:     viewW,
		viewH:     viewH,
		offX:      borderWidth,
		offY:      borderWidth,
		scenario:  sc,
		world:     w,
		feed:      feed,
		presenter: presenter,
		tileSize:  ts,
		worldBuf:  ebiten.NewImage(worldPx, worldPy),
		showHUD:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		simSpeed:  1,
		lastGold:  w.Ledger().Gold(),
	}
	feed.AddWorld(0, fmt.Sprintf("scenario %s seed %d", opts.Scenario, opts.Seed))
	logger.Log.WithFields(logrus.Fields{
		"component": "viewer",
		"scenario":  opts.Scenario,
		"seed":      opts.Seed,
		"units":     w.Units().Len(),
	}).Info("Viewer started.")
	return g, nil
}

func (g *Game) Update() error {
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	return nil
}

func (g *Game) simTick() {
	g.world.Step()
	if gold := g.world.Ledger().Gold(); gold != g.lastGold {
		g.feed.AddWorld(g.world.Tick(), fmt.Sprintf("gold %d (+%d)", gold, gold-g.lastGold))
		g.lastGold = gold
	}
}

// keyPressed reports a key going down this frame and records it in cur.
func (g *Game) keyPressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	if g.keyPressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	if g.keyPressed(currentKeys, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.keyPressed(currentKeys, ebiten.KeyComma) {
		g.simSpeed = slowerSpeed(g.simSpeed)
	}
	if g.keyPressed(currentKeys, ebiten.KeyPeriod) {
		g.simSpeed = fasterSpeed(g.simSpeed)
	}

	// G: send selected workers to the nearest gold mine.
	if g.keyPressed(currentKeys, ebiten.KeyG) {
		g.orderGather()
	}

	// C: copy the battle report to the clipboard.
	if g.keyPressed(currentKeys, ebiten.KeyC) {
		g.copyReport()
	}

	// Left mouse: click or drag to select.
	mx, my := ebiten.CursorPosition()
	wx, wy := g.screenToWorld(mx, my)
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouseLeft {
		g.dragging = true
		g.dragX, g.dragY = wx, wy
	}
	if !left && g.prevMouseLeft && g.dragging {
		g.dragging = false
		g.selectBox(g.dragX, g.dragY, wx, wy, ebiten.IsKeyPressed(ebiten.KeyShift))
	}
	g.prevMouseLeft = left

	// Right mouse: attack the enemy under the cursor, or move there.
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	if right && !g.prevMouseRight {
		g.orderAt(wx, wy)
	}
	g.prevMouseRight = right

	g.prevKeys = currentKeys
}

// screenToWorld converts a cursor position to battlefield pixels.
func (g *Game) screenToWorld(mx, my int) (float64, float64) {
	return float64(mx-g.offX) / viewScale, float64(my-g.offY) / viewScale
}

// unitAt returns the living unit whose tile contains the world point.
func (g *Game) unitAt(wx, wy float64) *sim.Unit {
	ts := float64(g.tileSize)
	var hit *sim.Unit
	g.world.Units().Each(func(u *sim.Unit) {
		if hit != nil || !u.Alive() {
			return
		}
		x, y := u.Position()
		if wx >= x && wx < x+ts && wy >= y && wy < y+ts {
			hit = u
		}
	})
	return hit
}

// selectBox selects living idle units inside the box. A click without drag
// selects the unit under the cursor.
func (g *Game) selectBox(x0, y0, x1, y1 float64, add bool) {
	if !add {
		g.world.Units().Each(func(u *sim.Unit) { u.Select(false) })
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	ts := float64(g.tileSize)
	if x1-x0 < 4 && y1-y0 < 4 {
		if u := g.unitAt(x1, y1); u != nil {
			u.Select(true)
		}
		return
	}
	g.world.Units().Each(func(u *sim.Unit) {
		x, y := u.Position()
		cx, cy := x+ts/2, y+ts/2
		if cx >= x0 && cx <= x1 && cy >= y0 && cy <= y1 {
			u.Select(true)
		}
	})
}

func (g *Game) selected() []*sim.Unit {
	var out []*sim.Unit
	g.world.Units().Each(func(u *sim.Unit) {
		if u.Selected() {
			out = append(out, u)
		}
	})
	return out
}

func (g *Game) orderAt(wx, wy float64) {
	sel := g.selected()
	if len(sel) == 0 {
		return
	}
	target := g.unitAt(wx, wy)
	tile := sim.TileAt(wx, wy, g.tileSize)
	for _, u := range sel {
		if target != nil && target.Faction() != u.Faction() {
			if u.Engage(target.Handle()) {
				g.feed.Add(g.world.Tick(), u.Label(), u.Faction(), "engages "+target.Label())
			}
			continue
		}
		if !u.RequestMove(tile.X, tile.Y) {
			g.feed.Add(g.world.Tick(), u.Label(), u.Faction(), "no path to "+tile.String())
		}
	}
}

func (g *Game) orderGather() {
	for _, u := range g.selected() {
		if !u.Kind().IsWorker() {
			continue
		}
		mine := g.world.Sites().Nearest(sim.SiteGoldMine, u.Tile())
		if mine == nil {
			g.feed.AddWorld(g.world.Tick(), "no gold mine on the map")
			return
		}
		if _, err := g.world.IssueGather(u.Handle(), mine.ID); err != nil {
			g.feed.Add(g.world.Tick(), u.Label(), u.Faction(), err.Error())
			continue
		}
		g.feed.Add(g.world.Tick(), u.Label(), u.Faction(), "off to the mine")
	}
}

func (g *Game) copyReport() {
	report := sim.BuildReport(g.world).String()
	if err := clipboard.WriteAll(report); err != nil {
		logger.Log.WithField("component", "viewer").WithError(err).Warn("Clipboard write failed.")
		g.feed.AddWorld(g.world.Tick(), "clipboard unavailable")
		return
	}
	g.feed.AddWorld(g.world.Tick(), "report copied")
}

// slowerSpeed steps one notch down the speed table.
func slowerSpeed(cur float64) float64 {
	for i, s := range speeds {
		if s >= cur && i > 0 {
			return speeds[i-1]
		}
	}
	return speeds[len(speeds)-1]
}

// fasterSpeed steps one notch up the speed table.
func fasterSpeed(cur float64) float64 {
	for _, s := range speeds {
		if s > cur {
			return s
		}
	}
	return cur
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 14, G: 12, B: 10, A: 255})

	g.worldBuf.Clear()
	g.drawWorld(g.worldBuf)

	var blit ebiten.DrawImageOptions
	blit.GeoM.Scale(viewScale, viewScale)
	blit.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.worldBuf, &blit)

	g.drawFrame(screen)
	g.feed.Draw(screen, g.offX+g.viewW+g.offX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size the viewer lays out for.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}

// World exposes the running simulation.
func (g *Game) World() *sim.World {
	return g.world
}
