package match

import (
	"fmt"
	"sync"
)

// Resolve compares a reference embedding against every candidate face and
// decides presence. Candidates are scored concurrently; Matches preserve
// the input order regardless of completion order. Any scoring failure
// (dimension mismatch, zero-norm embedding) aborts the whole resolution
// with no partial report: a silently skipped candidate could hide a false
// negative.
func Resolve(ref Vector, candidates []Candidate, threshold float64) (*Report, error) {
	if threshold < 0 || threshold > 1 {
		return nil, &InvalidThresholdError{Threshold: threshold}
	}

	report := &Report{
		BestIndex: -1,
		Threshold: threshold,
		Matches:   []Result{},
	}
	if len(candidates) == 0 {
		return report, nil
	}

	sims := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sims[i], errs[i] = CosineSimilarity(ref, candidates[i].Embedding)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %d: %w", candidates[i].Index, err)
		}
	}

	results := make([]Result, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		results[i] = Result{
			CandidateIndex: c.Index,
			Similarity:     sims[i],
			IsMatch:        sims[i] >= threshold,
		}

		// Strictly greater similarity wins; equal scores go to the
		// lowest candidate index so the choice is stable under any
		// re-ordering of ties.
		better := report.BestIndex == -1 ||
			sims[i] > report.BestSimilarity ||
			(sims[i] == report.BestSimilarity && c.Index < report.BestIndex)
		if better {
			report.BestSimilarity = sims[i]
			report.BestIndex = c.Index
		}
	}

	report.Matches = results
	report.Found = report.BestSimilarity >= threshold
	return report, nil
}
