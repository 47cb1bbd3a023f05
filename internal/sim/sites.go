package sim

import "sort"

// SiteKind is the type tag of a building or resource node.
type SiteKind int

const (
	SiteGoldMine SiteKind = iota
	SiteTownHall
	SiteGreatHall
	siteKindCount
)

func (k SiteKind) String() string {
	switch k {
	case SiteGoldMine:
		return "gold_mine"
	case SiteTownHall:
		return "town_hall"
	case SiteGreatHall:
		return "great_hall"
	default:
		return "unknown"
	}
}

// IsResource reports whether workers can be assigned to gather here.
func (k SiteKind) IsResource() bool {
	return k == SiteGoldMine
}

// DropOffKind returns the site kind a faction's workers deliver to.
func DropOffKind(f Faction) SiteKind {
	if f == FactionHorde {
		return SiteGreatHall
	}
	return SiteTownHall
}

// SiteID identifies a site within its registry.
type SiteID uint32

// --- Roster ---

// Roster is the set of workers currently assigned to a resource node.
type Roster struct {
	members map[Handle]struct{}
}

// Enlist adds h. Adding a member twice has no effect.
func (r *Roster) Enlist(h Handle) {
	if r.members == nil {
		r.members = make(map[Handle]struct{})
	}
	r.members[h] = struct{}{}
}

// Release removes h and reports whether it was present.
func (r *Roster) Release(h Handle) bool {
	if _, ok := r.members[h]; !ok {
		return false
	}
	delete(r.members, h)
	return true
}

// Has reports whether h is assigned.
func (r *Roster) Has(h Handle) bool {
	_, ok := r.members[h]
	return ok
}

// Occupied reports whether any worker is assigned.
func (r *Roster) Occupied() bool {
	return len(r.members) > 0
}

// Len returns the number of assigned workers.
func (r *Roster) Len() int {
	return len(r.members)
}

// Workers returns the assigned handles in ascending order.
func (r *Roster) Workers() []Handle {
	out := make([]Handle, 0, len(r.members))
	for h := range r.members {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// --- Site ---

// Site is a building or resource node occupying one anchor tile.
type Site struct {
	ID     SiteID
	Kind   SiteKind
	Tile   Tile
	roster Roster
	cue    SiteCue
}

// Roster returns the site's worker roster.
func (s *Site) Roster() *Roster {
	return &s.roster
}

// Cue returns the site's current presentation cue.
func (s *Site) Cue() SiteCue {
	return s.cue
}

// --- Registry ---

// SiteRegistry indexes sites by ID and by kind.
type SiteRegistry struct {
	byID   map[SiteID]*Site
	byKind [siteKindCount][]*Site
	nextID SiteID
}

// NewSiteRegistry creates an empty registry.
func NewSiteRegistry() *SiteRegistry {
	return &SiteRegistry{byID: make(map[SiteID]*Site)}
}

// Add registers a new site and returns it.
func (r *SiteRegistry) Add(kind SiteKind, tile Tile) *Site {
	r.nextID++
	s := &Site{ID: r.nextID, Kind: kind, Tile: tile}
	r.byID[s.ID] = s
	if kind >= 0 && kind < siteKindCount {
		r.byKind[kind] = append(r.byKind[kind], s)
	}
	return s
}

// Get returns the site with the given ID, or nil.
func (r *SiteRegistry) Get(id SiteID) *Site {
	return r.byID[id]
}

// First returns the earliest registered live site of a kind, or nil.
func (r *SiteRegistry) First(kind SiteKind) *Site {
	if kind < 0 || kind >= siteKindCount || len(r.byKind[kind]) == 0 {
		return nil
	}
	return r.byKind[kind][0]
}

// OfKind returns all live sites of a kind in registration order.
func (r *SiteRegistry) OfKind(kind SiteKind) []*Site {
	if kind < 0 || kind >= siteKindCount {
		return nil
	}
	return r.byKind[kind]
}

// Nearest returns the site of a kind closest to tile, or nil.
func (r *SiteRegistry) Nearest(kind SiteKind, tile Tile) *Site {
	var best *Site
	bestD := 0
	for _, s := range r.OfKind(kind) {
		dx, dy := s.Tile.X-tile.X, s.Tile.Y-tile.Y
		d := dx*dx + dy*dy
		if best == nil || d < bestD {
			best, bestD = s, d
		}
	}
	return best
}

// All returns every live site ordered by ID.
func (r *SiteRegistry) All() []*Site {
	out := make([]*Site, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove unregisters a site. Sites already resolved by a gather cycle keep
// working for that cycle; new lookups no longer see it.
func (r *SiteRegistry) Remove(id SiteID) bool {
	s, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	list := r.byKind[s.Kind]
	for i, other := range list {
		if other == s {
			r.byKind[s.Kind] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	return true
}
