// Package mapsync reconciles map filters and observation sets against map sessions.
package mapsync

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/geo"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

const (
	// DefaultPadding is the fraction of the marker span added on each side when
	// fitting bounds.
	DefaultPadding = 0.1
	// DefaultFlashDuration is how long markers flash after a deliberate filter change.
	DefaultFlashDuration = 1500 * time.Millisecond
)

// Mode tells the synchronizer how an empty result is treated.
type Mode int

const (
	// Deliberate is a user filter action: an empty result clears the map.
	Deliberate Mode = iota
	// Informational is a side display (RAG results): an empty result leaves the
	// map untouched.
	Informational
)

func (m Mode) String() string {
	if m == Informational {
		return "informational"
	}
	return "deliberate"
}

// Result describes one commit.
type Result struct {
	Filter     filter.Descriptor
	Fetched    int
	Displayed  int
	Skipped    int
	Superseded bool
}

// Empty reports whether the commit left no markers from this result on the map.
func (r Result) Empty() bool { return !r.Superseded && r.Displayed == 0 }

// Synchronizer applies filters to sessions.
type Synchronizer struct {
	source   ObservationSource
	padding  float64
	flashFor time.Duration
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithPadding overrides the bounds padding ratio.
func WithPadding(ratio float64) Option {
	return func(s *Synchronizer) { s.padding = ratio }
}

// WithFlashDuration overrides the flash duration. Zero disables flashing.
func WithFlashDuration(d time.Duration) Option {
	return func(s *Synchronizer) { s.flashFor = d }
}

// New creates a synchronizer.
func New(source ObservationSource, opts ...Option) *Synchronizer {
	s := &Synchronizer{source: source, padding: DefaultPadding, flashFor: DefaultFlashDuration}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Apply fetches observations for f and replaces the session markers as a deliberate
// action.
func (s *Synchronizer) Apply(ctx context.Context, sess *Session, t Ticket, f filter.Descriptor) (Result, error) {
	records, err := Fetch(ctx, s.source, f)
	if err != nil {
		if !sess.Current(t) {
			return Result{Filter: f, Superseded: true}, nil
		}
		return Result{Filter: f}, fmt.Errorf("fetch observations (%s): %w", f, err)
	}
	return s.commit(sess, t, f, records, Deliberate), nil
}

// Fetch lists the observations matching f. Type is derived rather than stored, so
// type filters fetch everything and keep the records of that derived type.
func Fetch(ctx context.Context, source ObservationSource, f filter.Descriptor) ([]observation.Record, error) {
	if f.Kind() != filter.KindType {
		return source.List(ctx, f) //nolint:wrapcheck // callers add the filter
	}
	records, err := source.List(ctx, filter.None())
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add the filter
	}
	return filterByType(records, f), nil
}

// Show displays an already fetched observation set.
func (s *Synchronizer) Show(sess *Session, t Ticket, records []observation.Record, mode Mode) Result {
	return s.commit(sess, t, filter.None(), records, mode)
}

func (s *Synchronizer) commit(
	sess *Session, t Ticket, f filter.Descriptor, records []observation.Record, mode Mode,
) Result {
	res := Result{Filter: f, Fetched: len(records)}

	markers := make([]Marker, 0, len(records))
	for i, r := range records {
		m, ok := markerFrom(r, i)
		if !ok {
			res.Skipped++
			continue
		}
		markers = append(markers, m)
	}
	res.Displayed = len(markers)

	if mode == Informational && len(markers) == 0 {
		res.Superseded = !sess.Current(t)
		return res
	}

	ok := sess.commit(t, func() {
		sess.clear()
		var b geo.Bounds
		for _, m := range markers {
			sess.add(m)
			b = b.Extend(m.Point)
		}
		sess.filter = f
		if len(markers) == 0 {
			return
		}
		sess.bounds = b.Pad(s.padding)
		if mode == Deliberate && s.flashFor > 0 {
			sess.flashUntil = sess.now().Add(s.flashFor)
		}
	})
	if !ok {
		return Result{Filter: f, Fetched: len(records), Superseded: true}
	}
	return res
}

func filterByType(records []observation.Record, f filter.Descriptor) []observation.Record {
	out := make([]observation.Record, 0, len(records))
	for _, r := range records {
		if r.Type() == f.Type() {
			out = append(out, r)
		}
	}
	return out
}
