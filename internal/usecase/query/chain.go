package query

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/answer"
)

// FallbackAnswerer asks the primary answerer and, when it fails, the fallback.
// Fallback answers are flagged UsingFallback.
type FallbackAnswerer struct {
	primary  Answerer
	fallback Answerer
	logger   *zap.Logger
}

// NewFallbackAnswerer chains two answerers. Either may be nil, not both.
func NewFallbackAnswerer(primary, fallback Answerer, logger *zap.Logger) *FallbackAnswerer {
	return &FallbackAnswerer{primary: primary, fallback: fallback, logger: logger}
}

// Ask implements Answerer.
func (a *FallbackAnswerer) Ask(ctx context.Context, question string) (answer.Answer, error) {
	var primaryErr error
	if a.primary != nil {
		ans, err := a.primary.Ask(ctx, question)
		if err == nil {
			return ans, nil
		}
		primaryErr = err
		if a.fallback == nil || ctx.Err() != nil {
			return answer.Answer{}, fmt.Errorf("primary answerer: %w", err)
		}
		a.logger.Warn("Primary answerer failed, using fallback", zap.Error(err))
	}
	if a.fallback == nil {
		return answer.Answer{}, domain.ErrQueryUnavailable
	}

	ans, err := a.fallback.Ask(ctx, question)
	if err != nil {
		return answer.Answer{}, fmt.Errorf("fallback answerer: %w", errors.Join(primaryErr, err))
	}
	ans.UsingFallback = true
	return ans, nil
}
