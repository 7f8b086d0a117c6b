package engine

import (
	"context"
	"sync"
	"time"

	"limited-flipper/internal/roblox"
	"limited-flipper/internal/rolimons"
)

// ResaleReader reads the live resale market for one asset.
// A false return means "no data" — the candidate is dropped, not retried.
type ResaleReader interface {
	ResaleData(ctx context.Context, assetID int64) (roblox.ResaleSnapshot, bool)
}

// candidate pairs a discovery stub with its reference-feed record.
type candidate struct {
	stub roblox.CandidateStub
	item rolimons.CatalogItem
}

// enrichment is one candidate that survived the per-item resale read.
type enrichment struct {
	cand candidate
	snap roblox.ResaleSnapshot
}

// enrichCandidates fetches resale data for every candidate with at most k
// fetches in flight; the rest queue until a slot frees. Fetches that fail,
// time out, or return no data contribute nothing. The output set is
// completion-order independent — callers must sort before relying on order.
func enrichCandidates(ctx context.Context, reader ResaleReader, cands []candidate, k int, timeout time.Duration) []enrichment {
	if len(cands) == 0 {
		return nil
	}

	var mu sync.Mutex
	var out []enrichment
	var wg sync.WaitGroup
	sem := make(chan struct{}, k)

	for _, c := range cands {
		wg.Add(1)
		sem <- struct{}{}
		go func(c candidate) {
			defer wg.Done()
			defer func() { <-sem }()

			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			snap, ok := reader.ResaleData(fctx, c.stub.ID)
			if !ok {
				return
			}
			mu.Lock()
			out = append(out, enrichment{cand: c, snap: snap})
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return out
}
