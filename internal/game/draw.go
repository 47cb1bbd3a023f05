package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Warband/internal/sim"
)

var (
	colorText     = color.RGBA{R: 225, G: 215, B: 190, A: 255}
	colorTextDim  = color.RGBA{R: 150, G: 140, B: 120, A: 255}
	colorNeutral  = color.RGBA{R: 200, G: 180, B: 90, A: 255}
	colorAlliance = color.RGBA{R: 70, G: 120, B: 230, A: 255}
	colorHorde    = color.RGBA{R: 210, G: 60, B: 50, A: 255}

	colorGrass   = color.RGBA{R: 52, G: 74, B: 40, A: 255}
	colorForest  = color.RGBA{R: 24, G: 44, B: 22, A: 255}
	colorGrid    = color.RGBA{R: 0, G: 0, B: 0, A: 28}
	colorMine    = color.RGBA{R: 120, G: 100, B: 40, A: 255}
	colorMineLit = color.RGBA{R: 240, G: 200, B: 60, A: 255}
	colorHall    = color.RGBA{R: 110, G: 90, B: 70, A: 255}
	colorSelect  = color.RGBA{R: 120, G: 255, B: 120, A: 255}
	colorDead    = color.RGBA{R: 90, G: 80, B: 70, A: 200}
)

// textFace is the fixed-width face used for every overlay string.
var textFace = text.NewGoXFace(basicfont.Face7x13)

// drawText renders s with its top-left corner at (x, y).
func drawText(dst *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, textFace, op)
}

func factionColor(f sim.Faction) color.RGBA {
	if f == sim.FactionHorde {
		return colorHorde
	}
	return colorAlliance
}

// drawWorld paints terrain, sites, units and missiles in world pixels.
func (g *Game) drawWorld(dst *ebiten.Image) {
	ts := float32(g.tileSize)
	grid := g.world.Grid()

	dst.Fill(colorGrass)
	for y := 0; y < grid.Rows(); y++ {
		for x := 0; x < grid.Cols(); x++ {
			if grid.IsBlocked(x, y) {
				vector.FillRect(dst, float32(x)*ts, float32(y)*ts, ts, ts, colorForest, false)
			}
		}
	}
	for x := 0; x <= grid.Cols(); x++ {
		vector.StrokeLine(dst, float32(x)*ts, 0, float32(x)*ts, float32(grid.Rows())*ts, 1, colorGrid, false)
	}
	for y := 0; y <= grid.Rows(); y++ {
		vector.StrokeLine(dst, 0, float32(y)*ts, float32(grid.Cols())*ts, float32(y)*ts, 1, colorGrid, false)
	}

	for _, s := range g.world.Sites().All() {
		g.drawSite(dst, s)
	}

	units := g.world.Units().Units()
	// Corpses first so the living draw on top.
	for _, u := range units {
		if u.Dead() {
			g.drawCorpse(dst, u)
		}
	}
	for _, u := range units {
		if u.Alive() {
			g.drawUnit(dst, u)
		}
	}
	for _, u := range units {
		if p, ok := u.Projectile(); ok {
			drawProjectile(dst, p)
		}
	}
}

func (g *Game) drawSite(dst *ebiten.Image, s *sim.Site) {
	ts := float32(g.tileSize)
	x, y := float32(s.Tile.X)*ts, float32(s.Tile.Y)*ts
	switch s.Kind {
	case sim.SiteGoldMine:
		fill := colorMine
		if s.Cue() == sim.SiteCueWorking {
			fill = colorMineLit
		}
		vector.FillRect(dst, x+2, y+2, ts-4, ts-4, fill, false)
		vector.StrokeRect(dst, x+2, y+2, ts-4, ts-4, 2, color.Black, false)
		if n := s.Roster().Len(); n > 0 {
			drawText(dst, fmt.Sprintf("%d", n), int(x)+int(ts)/2-3, int(y)+int(ts)/2-7, color.Black)
		}
	default:
		trim := colorAlliance
		if s.Kind == sim.SiteGreatHall {
			trim = colorHorde
		}
		vector.FillRect(dst, x-ts/2, y-ts/2, ts*2, ts*2, colorHall, false)
		vector.StrokeRect(dst, x-ts/2, y-ts/2, ts*2, ts*2, 3, trim, false)
	}
}

func (g *Game) drawUnit(dst *ebiten.Image, u *sim.Unit) {
	// Workers inside a mine are not drawn.
	if u.State() == sim.StateWorking {
		return
	}
	ts := float32(g.tileSize)
	px, py := u.Position()
	cx, cy := float32(px)+ts/2, float32(py)+ts/2
	r := ts * 0.32
	if u.Kind().IsWorker() {
		r = ts * 0.24
	}

	fill := factionColor(u.Faction())
	vector.FillCircle(dst, cx, cy, r, fill, true)
	vector.StrokeCircle(dst, cx, cy, r, 1.5, color.Black, true)

	if u.Kind().Style().Ranged() {
		vector.StrokeCircle(dst, cx, cy, r*0.5, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 160}, true)
	}
	if u.Carrying() {
		vector.FillRect(dst, cx+r*0.4, cy-r*1.1, r*0.7, r*0.7, colorMineLit, false)
	}

	fx, fy := u.Facing().Vector()
	vector.StrokeLine(dst, cx, cy, cx+float32(fx)*r*1.4, cy+float32(fy)*r*1.4, 2, color.White, true)

	if u.Selected() {
		vector.StrokeCircle(dst, cx, cy, r+4, 2, colorSelect, true)
	}

	// Health bar.
	ratio := float32(u.Stats().HealthRatio())
	bw := ts * 0.8
	bx, by := cx-bw/2, float32(py)+1
	vector.FillRect(dst, bx, by, bw, 3, color.RGBA{R: 40, G: 0, B: 0, A: 220}, false)
	vector.FillRect(dst, bx, by, bw*ratio, 3, healthColor(ratio), false)
}

func (g *Game) drawCorpse(dst *ebiten.Image, u *sim.Unit) {
	ts := float32(g.tileSize)
	px, py := u.Position()
	x, y := float32(px), float32(py)
	vector.StrokeLine(dst, x+6, y+6, x+ts-6, y+ts-6, 3, colorDead, true)
	vector.StrokeLine(dst, x+ts-6, y+6, x+6, y+ts-6, 3, colorDead, true)
}

func drawProjectile(dst *ebiten.Image, p sim.Projectile) {
	x, y := float32(p.X), float32(p.Y)
	dx := float32(math.Cos(p.Angle)) * 6
	dy := float32(math.Sin(p.Angle)) * 6
	if p.Style == sim.AttackSpinning {
		vector.StrokeLine(dst, x-dx, y-dy, x+dx, y+dy, 3, color.RGBA{R: 200, G: 200, B: 210, A: 255}, true)
		return
	}
	vector.StrokeLine(dst, x-dx, y-dy, x+dx, y+dy, 2, color.RGBA{R: 230, G: 210, B: 160, A: 255}, true)
}

func healthColor(ratio float32) color.RGBA {
	switch {
	case ratio > 0.6:
		return color.RGBA{R: 60, G: 200, B: 60, A: 255}
	case ratio > 0.3:
		return color.RGBA{R: 220, G: 190, B: 40, A: 255}
	default:
		return color.RGBA{R: 220, G: 50, B: 40, A: 255}
	}
}

// drawFrame outlines the battlefield and the live drag box.
func (g *Game) drawFrame(screen *ebiten.Image) {
	vector.StrokeRect(screen, float32(g.offX)-1, float32(g.offY)-1, float32(g.viewW)+2, float32(g.viewH)+2, 2, color.RGBA{R: 90, G: 80, B: 50, A: 255}, false)

	if !g.dragging {
		return
	}
	mx, my := ebiten.CursorPosition()
	ax := float32(g.dragX*viewScale) + float32(g.offX)
	ay := float32(g.dragY*viewScale) + float32(g.offY)
	x0, x1 := ax, float32(mx)
	y0, y1 := ay, float32(my)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, colorSelect, false)
}

// drawHUD renders tick, speed, ledger and faction counts along the top edge.
func (g *Game) drawHUD(screen *ebiten.Image) {
	vector.FillRect(screen, float32(g.offX), 2, float32(g.viewW), float32(g.offY)-4, color.RGBA{R: 20, G: 18, B: 14, A: 220}, false)

	speed := "paused"
	if g.simSpeed > 0 {
		speed = fmt.Sprintf("x%.1f", g.simSpeed)
	}
	var alive, total [2]int
	g.world.Units().Each(func(u *sim.Unit) {
		total[u.Faction()]++
		if u.Alive() {
			alive[u.Faction()]++
		}
	})
	line := fmt.Sprintf("T=%d %s | %s | %s %d/%d | %s %d/%d",
		g.world.Tick(), speed, g.world.Ledger().Snapshot(),
		sim.FactionAlliance, alive[sim.FactionAlliance], total[sim.FactionAlliance],
		sim.FactionHorde, alive[sim.FactionHorde], total[sim.FactionHorde])
	drawText(screen, line, g.offX+6, 5, colorText)

	help := "[LMB] select [RMB] move/attack [G] gather [P] pause [,/.] speed [C] copy report [H] hud"
	drawText(screen, help, g.offX+6, g.height-g.offY+5, colorTextDim)
}
