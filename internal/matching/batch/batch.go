// Package batch runs one startup profile against many investor candidates
// with a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/matching/engine"
	"github.com/Ayush1216/Frictionless/internal/store"
)

const DefaultConcurrency = 8

// Result pairs one candidate with its match outcome.
type Result struct {
	InvestorID   string              `json:"investor_id"`
	InvestorName string              `json:"investor_name"`
	Match        *engine.MatchResult `json:"match"`
}

// Options controls a batch run. OnProgress, when set, receives the current
// best-N results (already sorted) after every completed candidate.
type Options struct {
	Concurrency int
	Rubric      map[string]interface{}
	BestN       int
	OnProgress  func(best []Result)
}

type Matcher struct {
	logger logger.Logger
}

func NewMatcher(log logger.Logger) *Matcher {
	return &Matcher{logger: log}
}

// Run scores every candidate. A failing candidate is logged and excluded;
// it never aborts the batch. The returned slice is ordered by fit score
// descending, then investor name for a stable tiebreak.
func (m *Matcher) Run(ctx context.Context, startupObj map[string]interface{}, candidates []store.Candidate, opts Options) []Result {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(candidates) && len(candidates) > 0 {
		concurrency = len(candidates)
	}

	jobs := make(chan int)
	var (
		mu      sync.Mutex
		results []Result
		wg      sync.WaitGroup
	)

	emitProgress := func() {
		if opts.OnProgress == nil {
			return
		}
		best := sortResults(results)
		if opts.BestN > 0 && len(best) > opts.BestN {
			best = best[:opts.BestN]
		}
		opts.OnProgress(best)
	}

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				candidate := candidates[idx]
				match, err := m.scoreOne(startupObj, candidate, opts.Rubric)
				if err != nil {
					m.logger.Warn("candidate scoring failed, excluding from batch", map[string]interface{}{
						"investorId":   candidate.ID,
						"investorName": candidate.Name,
						"error":        err.Error(),
					})
					continue
				}

				mu.Lock()
				results = append(results, Result{
					InvestorID:   candidate.ID,
					InvestorName: candidate.Name,
					Match:        match,
				})
				emitProgress()
				mu.Unlock()
			}
		}()
	}

feed:
	for idx := range candidates {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return sortResults(results)
}

// scoreOne isolates a single candidate so a panic from a malformed profile
// document cannot take down the batch.
func (m *Matcher) scoreOne(startupObj map[string]interface{}, candidate store.Candidate, rubric map[string]interface{}) (match *engine.MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			match = nil
			err = fmt.Errorf("panic while scoring investor %s: %v", candidate.ID, r)
		}
	}()

	if candidate.Profile == nil {
		return nil, fmt.Errorf("investor %s has no profile document", candidate.ID)
	}
	return engine.Match(startupObj, candidate.Profile, rubric), nil
}

func sortResults(in []Result) []Result {
	out := make([]Result, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Match.FitScore != out[j].Match.FitScore {
			return out[i].Match.FitScore > out[j].Match.FitScore
		}
		return out[i].InvestorName < out[j].InvestorName
	})
	return out
}
