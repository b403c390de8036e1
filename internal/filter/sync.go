package filter

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultDebounce is how long typing must pause before a search navigates.
const DefaultDebounce = 400 * time.Millisecond

// Synchronizer drives navigation from one page's checkbox group and search
// box. Every mutation that changes the selection ends in a Navigate call.
type Synchronizer struct {
	Path     string
	Username string
	Nav      Navigator
	Tracker  *Tracker
	Session  SessionStore

	mu       sync.Mutex
	group    *CheckboxGroup
	debounce *Debouncer
	closed   bool
}

// NewSynchronizer binds a group built from names and st.
func NewSynchronizer(path string, names []string, st FilterState, nav Navigator, delay time.Duration) *Synchronizer {
	return &Synchronizer{
		Path:     path,
		Username: st.Username,
		Nav:      nav,
		group:    NewCheckboxGroup(names, st),
		debounce: NewDebouncer(delay),
	}
}

// Group exposes the checkbox group.
func (s *Synchronizer) Group() *CheckboxGroup { return s.group }

// State is the current selection.
func (s *Synchronizer) State() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.group.State(s.Username)
}

func (s *Synchronizer) navigate(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	st := s.group.State(s.Username)
	s.mu.Unlock()

	if s.Session != nil {
		SaveDashboard(s.Session, st)
	}
	return s.Nav.Navigate(ctx, st.URL(s.Path))
}

// SelectAll applies the "select all" checkbox and navigates.
func (s *Synchronizer) SelectAll(ctx context.Context, checked bool) error {
	s.mu.Lock()
	s.debounce.Stop()
	s.group.SetAll(checked)
	s.mu.Unlock()
	return s.navigate(ctx)
}

// Toggle flips one industry and navigates.
func (s *Synchronizer) Toggle(ctx context.Context, industry string) error {
	s.mu.Lock()
	s.debounce.Stop()
	ok := s.group.Toggle(industry)
	s.mu.Unlock()
	if !ok {
		log.Printf("[filter] no checkbox for %q", industry)
		return nil
	}
	return s.navigate(ctx)
}

// Type records search text and navigates once typing pauses.
func (s *Synchronizer) Type(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.group.Search(text)
	s.debounce.Trigger(func() {
		if err := s.navigate(ctx); err != nil {
			log.Printf("[filter] search navigation failed: %v", err)
		}
	})
}

// Submit navigates for the current search immediately.
func (s *Synchronizer) Submit(ctx context.Context) error {
	s.mu.Lock()
	s.debounce.Stop()
	s.mu.Unlock()
	return s.navigate(ctx)
}

// DuplicateChoice is the answer to a duplicate industry prompt.
type DuplicateChoice int

const (
	// KeepSelection leaves the selection as it is.
	KeepSelection DuplicateChoice = iota
	// UseExisting selects the tracked industry instead.
	UseExisting
	// AddNew tracks the new name anyway. Only near matches allow it.
	AddNew
)

// AddIndustry tracks a new industry and navigates with only it selected.
// On a duplicate, choose decides what happens; the duplicate is not
// reported as an error whatever it returns.
func (s *Synchronizer) AddIndustry(ctx context.Context, industry string, choose func(dup *DuplicateError) DuplicateChoice) error {
	if s.Tracker == nil {
		return errors.New("industry tracking unavailable")
	}
	s.mu.Lock()
	names := s.group.Names()
	s.mu.Unlock()

	err := s.Tracker.Add(ctx, industry, names)
	var dup *DuplicateError
	if errors.As(err, &dup) {
		choice := KeepSelection
		if choose != nil {
			choice = choose(dup)
		}
		switch {
		case choice == UseExisting && dup.Existing != "":
			industry = dup.Existing
			err = nil
		case choice == AddNew && dup.Near():
			err = s.Tracker.AddAnyway(ctx, industry, names)
		default:
			return nil
		}
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.debounce.Stop()
	s.group.Add(industry)
	s.group.SelectOnly(industry)
	s.mu.Unlock()
	return s.navigate(ctx)
}

// DeleteIndustry untracks an industry after confirm, removes its checkbox
// and re-syncs results.
func (s *Synchronizer) DeleteIndustry(ctx context.Context, industry string, confirm func(industry string) bool) error {
	if s.Tracker == nil {
		return errors.New("industry tracking unavailable")
	}
	if err := s.Tracker.Delete(ctx, industry, confirm); err != nil {
		return err
	}
	s.mu.Lock()
	s.group.Remove(industry)
	s.mu.Unlock()
	return s.navigate(ctx)
}

// Detach stops pending navigation; it implements View.
func (s *Synchronizer) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.debounce.Stop()
}
