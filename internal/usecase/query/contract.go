package query

import (
	"context"

	"github.com/kailas-cloud/bioscout/internal/domain/answer"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
)

// Synchronizer applies filters and observation sets to map sessions.
type Synchronizer interface {
	Apply(ctx context.Context, sess *mapsync.Session, t mapsync.Ticket, f filter.Descriptor) (mapsync.Result, error)
	Show(sess *mapsync.Session, t mapsync.Ticket, records []observation.Record, mode mapsync.Mode) mapsync.Result
}

// Answerer answers free-text questions (RAG collaborator or a fallback model).
type Answerer interface {
	Ask(ctx context.Context, question string) (answer.Answer, error)
}

// SubmitFunc submits a query on behalf of one session. It replaces a globally
// registered submit hook: callers receive it at construction time.
type SubmitFunc func(ctx context.Context, text string) (Outcome, error)
