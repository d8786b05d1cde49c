package sentiment

import (
	"context"
	"fmt"

	"github.com/lueurxax/sentiment-scope/internal/core/domain"
)

// Predictor is a model tier producing raw class probabilities for normalized text.
type Predictor interface {
	Predict(ctx context.Context, text string) (domain.Probabilities, error)
}

// Polarity holds lexicon sub-scores and the compound score in [-1, 1].
type Polarity struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

// LexiconScorer is the lexicon tier.
type LexiconScorer interface {
	Polarity(text string) (Polarity, error)
}

// Slot is either Unloaded or Loaded with a handle. The zero value is Unloaded.
type Slot[T any] struct {
	handle T
	loaded bool
}

// Loaded wraps a handle.
func Loaded[T any](handle T) Slot[T] {
	return Slot[T]{handle: handle, loaded: true}
}

// Unloaded returns an empty slot.
func Unloaded[T any]() Slot[T] {
	return Slot[T]{}
}

// Get returns the handle and whether the slot is loaded.
func (s Slot[T]) Get() (T, bool) {
	return s.handle, s.loaded
}

// IsLoaded reports whether the slot holds a handle.
func (s Slot[T]) IsLoaded() bool {
	return s.loaded
}

// Tiers is the immutable set of classifier tiers chosen at startup.
type Tiers struct {
	Neural    Slot[Predictor]
	Classical Slot[Predictor]
	Lexicon   Slot[LexiconScorer]
}

// Status reports which tiers are loaded, keyed by model tag.
func (t Tiers) Status() map[domain.ModelTag]bool {
	return map[domain.ModelTag]bool{
		domain.ModelTransformer: t.Neural.IsLoaded(),
		domain.ModelBaseline:    t.Classical.IsLoaded(),
		domain.ModelLexicon:     t.Lexicon.IsLoaded(),
	}
}

// Any reports whether at least one tier is loaded.
func (t Tiers) Any() bool {
	return t.Neural.IsLoaded() || t.Classical.IsLoaded() || t.Lexicon.IsLoaded()
}

// TierError is a runtime failure inside one tier.
type TierError struct {
	Tier domain.ModelTag
	Err  error
}

func (e *TierError) Error() string {
	return fmt.Sprintf("tier %s: %v", e.Tier, e.Err)
}

func (e *TierError) Unwrap() error {
	return e.Err
}
