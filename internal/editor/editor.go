package editor

// Editor owns the current snapshot for an event-driven front-end. Each
// Dispatch reads the snapshot as it is now, so callers never hold stale
// copies. An Editor is driven by one caller at a time.
type Editor struct {
	machine *Machine
	current Snapshot
}

// New returns an editor in the initial state.
func New(m *Machine) *Editor {
	return &Editor{machine: m, current: Initial()}
}

// Dispatch applies a to the current snapshot and returns the new one.
func (e *Editor) Dispatch(a Action) Snapshot {
	e.current = e.machine.Apply(e.current, a)
	return e.current
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	return e.current
}
