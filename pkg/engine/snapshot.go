package engine

// Handle identifies a saved state inside an Arena.
type Handle int32

// Arena is a stack of saved states. Search code snapshots the position
// before trying a line and restores it afterwards; handles are released in
// LIFO order so the backing slice is reused across a whole search.
type Arena struct {
	saved []State
}

// NewArena returns an arena with room for capacity snapshots.
func NewArena(capacity int) *Arena {
	return &Arena{saved: make([]State, 0, capacity)}
}

// Snapshot saves st and returns a handle to it.
func (a *Arena) Snapshot(st *State) Handle {
	a.saved = append(a.saved, *st)
	return Handle(len(a.saved) - 1)
}

// Restore overwrites st with the state saved under h.
func (a *Arena) Restore(st *State, h Handle) {
	*st = a.saved[h]
}

// Release drops h and every snapshot taken after it.
func (a *Arena) Release(h Handle) {
	a.saved = a.saved[:h]
}

// Len returns the number of live snapshots.
func (a *Arena) Len() int {
	return len(a.saved)
}
