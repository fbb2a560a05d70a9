package mapsync

import (
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/geo"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/domain/taxonomy"
)

// Ticket stamps one dispatch against a session. Tickets grow monotonically; a
// commit carrying a ticket older than the latest issued one is discarded.
type Ticket uint64

// Marker is one observation placed on the map.
type Marker struct {
	ID       string
	Species  string
	Type     taxonomy.SpeciesType
	Point    geo.Point
	Location string
	Date     string
	Notes    string
	ImageURL string
}

// View is a point-in-time copy of a session.
type View struct {
	ID       string
	Markers  []Marker
	Bounds   geo.Bounds
	Filter   filter.Descriptor
	Flashing bool
	Sequence Ticket
}

// Session is the marker layer of one map. Markers are replaced only by commits
// from the Synchronizer; clear and add are its only mutators.
type Session struct {
	id  string
	now func() time.Time

	mu         sync.Mutex
	markers    []Marker
	bounds     geo.Bounds
	filter     filter.Descriptor
	flashUntil time.Time
	issued     Ticket
	lastUsed   time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the session clock.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates an empty map session.
func NewSession(id string, opts ...SessionOption) *Session {
	s := &Session{id: id, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.lastUsed = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Begin issues the next dispatch ticket.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.lastUsed = s.now()
	return s.issued
}

// Current reports whether t is the latest issued ticket.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.issued
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers := make([]Marker, len(s.markers))
	copy(markers, s.markers)
	return View{
		ID:       s.id,
		Markers:  markers,
		Bounds:   s.bounds,
		Filter:   s.filter,
		Flashing: s.now().Before(s.flashUntil),
		Sequence: s.issued,
	}
}

// Marker looks up a displayed marker by id.
func (s *Session) Marker(id string) (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}

// IdleSince returns the time of the last dispatch or view-changing commit.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

// commit runs fn under the session lock when t is still current. It reports false
// for a superseded ticket.
func (s *Session) commit(t Ticket, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.issued {
		return false
	}
	fn()
	s.lastUsed = s.now()
	return true
}

// clear and add must be called inside commit.
func (s *Session) clear() {
	s.markers = s.markers[:0]
}

func (s *Session) add(m Marker) {
	s.markers = append(s.markers, m)
}

func markerFrom(r observation.Record, index int) (Marker, bool) {
	p, ok := r.Point()
	if !ok {
		return Marker{}, false
	}
	id := string(r.ID)
	if id == "" {
		id = fmt.Sprintf("m%d", index)
	}
	return Marker{
		ID:       id,
		Species:  r.SpeciesName,
		Type:     r.Type(),
		Point:    p,
		Location: r.Location,
		Date:     r.DateObserved,
		Notes:    r.Notes,
		ImageURL: r.ImageURL,
	}, true
}
