// Package query runs the query lifecycle: parse a map command, fall back to the
// question-answering collaborator, and reconcile the map session with the result.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/logger"
	"github.com/kailas-cloud/bioscout/internal/metrics"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
	"github.com/kailas-cloud/bioscout/internal/usecase/resolve"
)

// Service handles query submissions against map sessions.
type Service struct {
	sessions *Registry
	sync     Synchronizer
	answerer Answerer
	logger   *zap.Logger
}

// New creates a query service. answerer can be nil: queries that are not map
// commands then go straight to keyword extraction.
func New(sessions *Registry, sync Synchronizer, answerer Answerer, logger *zap.Logger) *Service {
	return &Service{sessions: sessions, sync: sync, answerer: answerer, logger: logger}
}

// Sessions exposes the session registry.
func (s *Service) Sessions() *Registry { return s.sessions }

// Dispatcher returns the submit function bound to one session.
func (s *Service) Dispatcher(sessionID string) SubmitFunc {
	return func(ctx context.Context, text string) (Outcome, error) {
		return s.Submit(ctx, sessionID, text)
	}
}

// LearnMore asks about the species of a displayed marker.
func (s *Service) LearnMore(ctx context.Context, sessionID, markerID string) (Outcome, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Outcome{}, err
	}
	m, ok := sess.Marker(markerID)
	if !ok {
		return Outcome{}, fmt.Errorf("marker %q: %w", markerID, domain.ErrMarkerNotFound)
	}
	return s.Dispatcher(sessionID)(ctx, LearnMoreQuery(m.Species))
}

// LearnMoreQuery builds the question asked for a marker's species.
func LearnMoreQuery(species string) string {
	name := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(species)))
	return "Tell me about " + name
}

// Submit runs one query through the lifecycle. Collaborator failures are reported
// as a failed Outcome with a user-visible message, not as an error.
func (s *Service) Submit(ctx context.Context, sessionID, text string) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, domain.ErrEmptyQuery
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	out := Outcome{SessionID: sessionID, Query: text, Sequence: sess.Begin()}
	out.enter(StageParsingCommand)

	switch f, ok := resolve.Resolve(text); {
	case ok:
		out.Route = RouteDirect
		out.enter(StageDirectFilterApplied)
		s.apply(ctx, sess, &out, f)
	case s.answerer == nil:
		out.Route = RouteExtraction
		s.extract(ctx, sess, &out)
	default:
		out.Route = RouteRAG
		s.ask(ctx, sess, &out)
	}

	metrics.QueriesTotal.WithLabelValues(string(out.Route), out.outcomeLabel()).Inc()
	metrics.QueryDuration.WithLabelValues(string(out.Route)).Observe(time.Since(start).Seconds())

	s.logFor(ctx).Debug("Query handled",
		zap.String("session", sessionID),
		zap.String("route", string(out.Route)),
		zap.String("stage", string(out.Stage())),
		zap.Stringer("filter", out.Filter),
		zap.Int("displayed", out.Displayed),
		zap.Uint64("sequence", uint64(out.Sequence)),
	)
	return out, nil
}

// ask dispatches to the answerer. An answer with geospatial observations is shown
// informationally; otherwise keyword extraction picks a follow-up filter.
func (s *Service) ask(ctx context.Context, sess *mapsync.Session, out *Outcome) {
	out.enter(StageRAGDispatched)

	ans, err := s.answerer.Ask(ctx, out.Query)
	if err != nil {
		s.logFor(ctx).Warn("Query answer failed", zap.String("session", out.SessionID), zap.Error(err))
		if !sess.Current(out.Sequence) {
			out.enter(StageSuperseded)
			return
		}
		out.Message = MessageQueryFailed
		out.enter(StageFailed)
		return
	}
	out.Answer = ans.Text
	out.UsingFallback = ans.UsingFallback
	out.KnowledgeSources = ans.KnowledgeSources

	if ans.Geospatial() > 0 {
		res := s.sync.Show(sess, out.Sequence, ans.Observations, mapsync.Informational)
		s.record(out, res)
		return
	}

	out.Route = RouteRAGExtraction
	s.extract(ctx, sess, out)
}

func (s *Service) extract(ctx context.Context, sess *mapsync.Session, out *Outcome) {
	out.enter(StageFallbackExtractionAttempted)

	f, ok := resolve.Extract(out.Query)
	if !ok {
		if out.Answer == "" {
			out.Message = MessageNotUnderstood
		}
		out.enter(StageResultsDisplayed)
		return
	}
	s.apply(ctx, sess, out, f)
}

func (s *Service) apply(ctx context.Context, sess *mapsync.Session, out *Outcome, f filter.Descriptor) {
	out.Filter = f

	res, err := s.sync.Apply(ctx, sess, out.Sequence, f)
	if err != nil {
		s.logFor(ctx).Warn("Observation fetch failed",
			zap.String("session", out.SessionID),
			zap.Stringer("filter", f),
			zap.Error(err),
		)
		out.Message = MessageObservationsFailed
		out.enter(StageFailed)
		return
	}
	s.record(out, res)
	if res.Empty() && out.Message == "" {
		out.Message = MessageNoMatches
	}
}

func (s *Service) record(out *Outcome, res mapsync.Result) {
	if res.Superseded {
		out.enter(StageSuperseded)
		return
	}
	out.Displayed = res.Displayed
	out.Skipped = res.Skipped
	if res.Skipped > 0 {
		metrics.MarkersSkippedTotal.Add(float64(res.Skipped))
	}
	out.enter(StageResultsDisplayed)
}

func (s *Service) logFor(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
