package state

import "sync"

type Phase int

const (
	BOOTING Phase = iota
	WAITING_PERMISSION
	READY
	DENIED
	STOPPING
)

func (phase Phase) String() string {
	switch phase {
	case BOOTING:
		return "booting"
	case WAITING_PERMISSION:
		return "waiting_permission"
	case READY:
		return "ready"
	case DENIED:
		return "denied"
	case STOPPING:
		return "stopping"
	default:
		return "unknown"
	}
}

// State is the whole mutable state of the camera screen.
// RotationAngle is free-running: it is never normalized modulo 360.
type State struct {
	Phase          Phase
	PreviewEnabled bool
	RotationAngle  int
	StoragePath    string
	Platform       string
	PreviewScale   float64

	LastCapture string
	LastError   string
	Captures    int
}

// Store guards State. Mutations are expected to come from the UI loop only;
// the lock exists for readers (render loop, web API) on other goroutines.
type Store struct {
	mu      sync.RWMutex
	state   State
	changed chan struct{}
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}, changed: make(chan struct{})}
}

// NewStoreWith seeds the store with startup values.
func NewStoreWith(initial State) *Store {
	return &Store{state: initial, changed: make(chan struct{})}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

// Changed returns a channel that is closed on the next state mutation.
func (store *Store) Changed() <-chan struct{} {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.changed
}

func (store *Store) update(mutate func(*State)) State {
	store.mu.Lock()
	mutate(&store.state)
	snap := store.state
	close(store.changed)
	store.changed = make(chan struct{})
	store.mu.Unlock()
	return snap
}

func (store *Store) SetPhase(phase Phase) {
	store.update(func(s *State) { s.Phase = phase })
}

// SetStoragePath records the storage directory once it has been resolved
// after the permission gate. It is not changed afterwards.
func (store *Store) SetStoragePath(path string) {
	store.update(func(s *State) { s.StoragePath = path })
}

// TogglePreview flips PreviewEnabled and returns the new value.
func (store *Store) TogglePreview() bool {
	return store.update(func(s *State) { s.PreviewEnabled = !s.PreviewEnabled }).PreviewEnabled
}

// Rotate adds 90 degrees to the rotation angle and returns the new angle.
func (store *Store) Rotate() int {
	return store.update(func(s *State) { s.RotationAngle += 90 }).RotationAngle
}

func (store *Store) RecordCapture(path string) {
	store.update(func(s *State) {
		s.LastCapture = path
		s.LastError = ""
		s.Captures++
	})
}

func (store *Store) RecordError(message string) {
	store.update(func(s *State) { s.LastError = message })
}
