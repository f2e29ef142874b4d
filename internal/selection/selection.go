// Package selection picks the best measured parameter set for a time budget.
//
// A Selector ranks a calibration.Series once, according to its Strategy, and
// then answers Select queries by returning the highest-ranked sample whose
// elapsed time fits the budget. Answers, including failures, are memoized
// per budget so repeated queries are deterministic.
package selection

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agbru/argontune/internal/calibration"
	apperrors "github.com/agbru/argontune/internal/errors"
)

// Strategy names a ranking policy.
type Strategy string

const (
	// MaxCost prefers the greatest derived cost, then the longest time.
	MaxCost Strategy = "max-cost"
	// ClosestMatch prefers the longest time, i.e. the sample closest to the
	// budget from below.
	ClosestMatch Strategy = "closest-match"
	// MaxMemory prefers the greatest memoryCost, then the longest time.
	MaxMemory Strategy = "max-memory"
)

// Strategies lists every selection strategy.
var Strategies = []Strategy{MaxCost, ClosestMatch, MaxMemory}

func (s Strategy) String() string { return string(s) }

// ParseStrategy resolves a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := rankings[s]; ok {
		return s, nil
	}
	return "", apperrors.UnknownPolicyError{Kind: "selection", Name: name}
}

// ErrNotInitialized is returned by Select before Initialize succeeds.
var ErrNotInitialized = errors.New("selector not initialized")

// ranking orders samples best first.
type ranking func(a, b calibration.Sample) int

var rankings = map[Strategy]ranking{
	MaxCost: func(a, b calibration.Sample) int {
		if c := cmp.Compare(b.Cost, a.Cost); c != 0 {
			return c
		}
		return cmp.Compare(b.Elapsed, a.Elapsed)
	},
	ClosestMatch: func(a, b calibration.Sample) int {
		return cmp.Compare(b.Elapsed, a.Elapsed)
	},
	MaxMemory: func(a, b calibration.Sample) int {
		if c := cmp.Compare(b.Params.MemoryCost, a.Params.MemoryCost); c != 0 {
			return c
		}
		return cmp.Compare(b.Elapsed, a.Elapsed)
	},
}

type result struct {
	sample calibration.Sample
	err    error
}

// Selector is safe for concurrent use.
type Selector struct {
	strategy Strategy
	rank     ranking

	mu      sync.Mutex
	ranked  []calibration.Sample
	fastest calibration.Sample
	slowest calibration.Sample
	memo    map[time.Duration]result
}

// New returns a selector for strategy.
func New(strategy Strategy) (*Selector, error) {
	rank, ok := rankings[strategy]
	if !ok {
		return nil, apperrors.UnknownPolicyError{Kind: "selection", Name: string(strategy)}
	}
	return &Selector{strategy: strategy, rank: rank}, nil
}

// Strategy returns the ranking policy of the selector.
func (s *Selector) Strategy() Strategy { return s.strategy }

// Initialize ranks series and records its extremes. The series is copied.
// Calling it again replaces the series and forgets earlier answers.
func (s *Selector) Initialize(series calibration.Series) error {
	if len(series) == 0 {
		return apperrors.ErrEmptySeries
	}

	ranked := slices.Clone(series)
	slices.SortStableFunc(ranked, s.rank)

	fastest, slowest := series[0], series[0]
	for _, sample := range series[1:] {
		if sample.Elapsed < fastest.Elapsed {
			fastest = sample
		}
		if sample.Elapsed > slowest.Elapsed {
			slowest = sample
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranked = ranked
	s.fastest = fastest
	s.slowest = slowest
	s.memo = make(map[time.Duration]result)
	return nil
}

// Select returns the highest-ranked sample whose elapsed time does not exceed
// budget. When none fits it returns a *apperrors.NoSampleWithinBudgetError.
func (s *Selector) Select(budget time.Duration) (calibration.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ranked == nil {
		return calibration.Sample{}, ErrNotInitialized
	}
	if r, ok := s.memo[budget]; ok {
		return r.sample, r.err
	}

	r := result{err: &apperrors.NoSampleWithinBudgetError{Budget: budget, Fastest: s.fastest.Elapsed}}
	for _, sample := range s.ranked {
		if sample.Elapsed <= budget {
			r = result{sample: sample}
			break
		}
	}
	s.memo[budget] = r
	return r.sample, r.err
}

// Fastest returns the quickest sample. Ties go to the earliest measurement.
func (s *Selector) Fastest() (calibration.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fastest, s.ranked != nil
}

// Slowest returns the slowest sample. Ties go to the earliest measurement.
func (s *Selector) Slowest() (calibration.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slowest, s.ranked != nil
}

// Ranked returns a copy of the ranked series, best first.
func (s *Selector) Ranked() calibration.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ranked)
}
