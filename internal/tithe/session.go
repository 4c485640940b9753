package tithe

import "sync"

// Listener receives the recomputed breakdown after every input change.
type Listener func(Breakdown)

// Session holds a user's editable inputs and recomputes the breakdown whenever one changes.
// It is safe for concurrent use; listeners run synchronously after the lock is released.
type Session struct {
	mu        sync.Mutex
	in        Inputs
	current   Breakdown
	listeners map[int]Listener
	nextID    int
}

// NewSession starts a session from the given inputs and computes the initial breakdown.
func NewSession(in Inputs) *Session {
	return &Session{in: in, current: Evaluate(in), listeners: map[int]Listener{}}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Inputs returns a copy of the current inputs.
func (s *Session) Inputs() Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in
}

// Breakdown returns the breakdown for the current inputs.
func (s *Session) Breakdown() Breakdown {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies edit to the inputs, recomputes and notifies listeners.
func (s *Session) Update(edit func(*Inputs)) Breakdown {
	s.mu.Lock()
	edit(&s.in)
	s.current = Evaluate(s.in)
	b := s.current
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(b)
	}
	return b
}

// SetBand1Cap moves the band 1 cap, dragging the band 2 cap up with it if needed.
func (s *Session) SetBand1Cap(v float64) Breakdown {
	return s.Update(func(in *Inputs) { in.Schedule.SetCap1(v) })
}

// SetBand2Cap moves the band 2 cap; it cannot drop below the band 1 cap.
func (s *Session) SetBand2Cap(v float64) Breakdown {
	return s.Update(func(in *Inputs) { in.Schedule.SetCap2(v) })
}

// SetLandPreset switches the land share preset.
func (s *Session) SetLandPreset(p LandPreset) Breakdown {
	return s.Update(func(in *Inputs) { in.Land.SelectPreset(p) })
}
