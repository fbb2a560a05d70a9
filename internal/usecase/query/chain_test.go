package query

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bioscout/internal/domain"
	"github.com/kailas-cloud/bioscout/internal/domain/answer"
	"github.com/kailas-cloud/bioscout/internal/domain/geo"
	"github.com/kailas-cloud/bioscout/internal/domain/observation"
)

func TestFallbackAnswerer_PrimaryWins(t *testing.T) {
	primary := &mockAnswerer{ans: answer.Answer{Text: "primary"}}
	fallback := &mockAnswerer{ans: answer.Answer{Text: "fallback"}}
	a := NewFallbackAnswerer(primary, fallback, zap.NewNop())

	got, err := a.Ask(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "primary" || got.UsingFallback {
		t.Errorf("got %+v", got)
	}
	if fallback.calls != 0 {
		t.Error("fallback must not be called")
	}
}

func TestFallbackAnswerer_UsesFallback(t *testing.T) {
	primary := &mockAnswerer{err: errors.New("rag down")}
	fallback := &mockAnswerer{ans: answer.Answer{
		Text: "fallback",
		Observations: []observation.Record{
			{SpeciesName: "Red Fox", Coordinates: observation.At(geo.Point{Lon: 73, Lat: 33})},
		},
	}}
	a := NewFallbackAnswerer(primary, fallback, zap.NewNop())

	got, err := a.Ask(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "fallback" || !got.UsingFallback || len(got.Observations) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestFallbackAnswerer_BothFail(t *testing.T) {
	a := NewFallbackAnswerer(
		&mockAnswerer{err: errors.New("rag down")},
		&mockAnswerer{err: errors.New("openai down")},
		zap.NewNop(),
	)
	if _, err := a.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFallbackAnswerer_OnlyFallback(t *testing.T) {
	a := NewFallbackAnswerer(nil, &mockAnswerer{ans: answer.Answer{Text: "hi"}}, zap.NewNop())
	got, err := a.Ask(context.Background(), "q")
	if err != nil || !got.UsingFallback {
		t.Errorf("got %+v, %v", got, err)
	}
}

func TestFallbackAnswerer_NoneConfigured(t *testing.T) {
	a := NewFallbackAnswerer(nil, nil, zap.NewNop())
	if _, err := a.Ask(context.Background(), "q"); !errors.Is(err, domain.ErrQueryUnavailable) {
		t.Errorf("expected ErrQueryUnavailable, got %v", err)
	}
}
