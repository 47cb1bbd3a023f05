package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Warband/internal/sim"
)

const (
	feedPanelWidth = 320
	feedMaxEntries = 60
	feedLineHeight = 14
)

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // e.g. "A1", "H3", or "--"
	Faction sim.Faction
	World   bool // world-level line with no faction colour
	Message string
}

// Feed is a ring buffer of recent battlefield events rendered on-screen.
type Feed struct {
	entries []FeedEntry
	head    int
	count   int
}

// NewFeed creates a feed with a fixed capacity.
func NewFeed() *Feed {
	return &Feed{
		entries: make([]FeedEntry, feedMaxEntries),
	}
}

// Add appends a unit entry to the feed.
func (f *Feed) Add(tick int, label string, faction sim.Faction, msg string) {
	f.push(FeedEntry{Tick: tick, Label: label, Faction: faction, Message: msg})
}

// AddWorld appends a line that belongs to no unit.
func (f *Feed) AddWorld(tick int, msg string) {
	f.push(FeedEntry{Tick: tick, Label: "--", World: true, Message: msg})
}

func (f *Feed) push(e FeedEntry) {
	f.entries[f.head] = e
	f.head = (f.head + 1) % feedMaxEntries
	if f.count < feedMaxEntries {
		f.count++
	}
}

// Len returns the number of stored entries.
func (f *Feed) Len() int { return f.count }

// Recent returns entries in chronological order (oldest first).
func (f *Feed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedMaxEntries) % feedMaxEntries
		result[i] = f.entries[idx]
	}
	return result
}

// Draw renders the feed panel at panelX, newest entry at the bottom.
func (f *Feed) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), float32(panelH), color.RGBA{R: 14, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 80, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(feedPanelWidth), 18, color.RGBA{R: 34, G: 28, B: 20, A: 255}, false)
	drawText(screen, "BATTLE FEED", panelX+8, 3, colorText)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+feedPanelWidth), 18, 1.0, color.RGBA{R: 90, G: 80, B: 50, A: 200}, false)

	entries := f.Recent()
	maxVisible := (panelH - 24) / feedLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	recent := 3

	y := 22
	for i, e := range entries {
		isRecent := i >= len(entries)-recent
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(feedPanelWidth-4), float32(feedLineHeight), color.RGBA{R: 40, G: 34, B: 24, A: 160}, false)
		}
		dot := colorNeutral
		if !e.World {
			dot = factionColor(e.Faction)
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, dot, false)

		txt := colorTextDim
		if isRecent {
			txt = colorText
		}
		drawText(screen, fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y+1, txt)
		y += feedLineHeight
	}
}
