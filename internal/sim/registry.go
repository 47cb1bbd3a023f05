package sim

import "fmt"

// Handle is a non-owning reference to a unit. It packs a slot index (low 32
// bits) and the slot generation (high 32 bits). Generations start at 1, so the
// zero Handle never names a unit.
type Handle uint64

// NoUnit is the empty handle.
const NoUnit Handle = 0

const handleIndexBits = 32

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<handleIndexBits | uint64(index))
}

func (h Handle) index() uint32 { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> handleIndexBits) }

// Valid reports whether h is non-empty. A valid handle may still be stale.
func (h Handle) Valid() bool { return h != NoUnit }

func (h Handle) String() string {
	if h == NoUnit {
		return "none"
	}
	return fmt.Sprintf("#%d.%d", h.index(), h.generation())
}

type registrySlot struct {
	gen  uint32
	unit *Unit
}

// Registry stores every unit of a world and hands out generational handles.
// Removing a unit invalidates all handles to it at once.
type Registry struct {
	slots []registrySlot
	free  []uint32
	count int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert stores u and returns its handle.
func (r *Registry) Insert(u *Unit) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, registrySlot{gen: 1})
	}
	r.slots[idx].unit = u
	r.count++
	return makeHandle(idx, r.slots[idx].gen)
}

// Resolve returns the unit h refers to, or nil when h is empty or stale.
func (r *Registry) Resolve(h Handle) *Unit {
	if h == NoUnit {
		return nil
	}
	idx := h.index()
	if int(idx) >= len(r.slots) {
		return nil
	}
	slot := r.slots[idx]
	if slot.gen != h.generation() || slot.unit == nil {
		return nil
	}
	return slot.unit
}

// Remove frees the slot h refers to. It returns false for stale handles.
func (r *Registry) Remove(h Handle) bool {
	if r.Resolve(h) == nil {
		return false
	}
	idx := h.index()
	r.slots[idx].unit = nil
	r.slots[idx].gen++
	if r.slots[idx].gen == 0 {
		r.slots[idx].gen = 1
	}
	r.free = append(r.free, idx)
	r.count--
	return true
}

// Each visits live units in slot order, which is stable between ticks.
func (r *Registry) Each(fn func(*Unit)) {
	for i := range r.slots {
		if u := r.slots[i].unit; u != nil {
			fn(u)
		}
	}
}

// Units returns live units in slot order.
func (r *Registry) Units() []*Unit {
	out := make([]*Unit, 0, r.count)
	r.Each(func(u *Unit) { out = append(out, u) })
	return out
}

// Len returns the number of live units.
func (r *Registry) Len() int {
	return r.count
}
