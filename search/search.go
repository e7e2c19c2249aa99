// Package search implements the Search Engine (C8): coarse whole-file
// ranking followed by fine sliding-window localization, over a bounded
// worker pool.
package search

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"waveprint/audio"
	"waveprint/fingerprint"
	"waveprint/store"
)

// Match is a query result: a candidate sound, its score, and the matched
// time range within it.
type Match struct {
	SoundID      int64
	Filepath     string
	Filename     string
	Score        float64
	MatchStart   float64
	MatchEnd     float64
	FileDuration float64
}

// Engine runs similarity queries against a Store.
type Engine struct {
	store store.Store
}

// New wraps s in a search Engine.
func New(s store.Store) *Engine {
	return &Engine{store: s}
}

const coarseSlack = 0.8
const coarseCap = 20
const fineWindowCap = 50

// FindSimilar ranks every stored fingerprint against q and returns whole-
// file matches scoring at or above threshold, sorted descending, truncated
// to maxResults.
func (e *Engine) FindSimilar(q *fingerprint.Fingerprint, threshold float64, maxResults int) ([]Match, error) {
	scored, err := e.scoreAll(q, threshold)
	if err != nil {
		return nil, err
	}
	scored = topN(scored, maxResults)

	out := make([]Match, 0, len(scored))
	for _, c := range scored {
		sound, ok, err := e.store.GetSound(c.id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, Match{
			SoundID:      sound.ID,
			Filepath:     sound.Filepath,
			Filename:     sound.Filename,
			Score:        c.score,
			MatchStart:   0,
			MatchEnd:     sound.Duration,
			FileDuration: sound.Duration,
		})
	}
	return out, nil
}

// FindSimilarWithSegments runs a coarse whole-file prefilter at a relaxed
// threshold, then localizes each surviving candidate to its best-scoring
// sliding window.
func (e *Engine) FindSimilarWithSegments(q *fingerprint.Fingerprint, threshold float64, maxResults int) ([]Match, error) {
	candidates, err := e.scoreAll(q, threshold*coarseSlack)
	if err != nil {
		return nil, err
	}
	candidates = topN(candidates, coarseCap)

	type segResult struct {
		ok    bool
		match Match
	}
	results := make([]segResult, len(candidates))

	workers := int64(runtime.NumCPU() / 2)
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i, c := range candidates {
		sound, ok, err := e.store.GetSound(c.id)
		if err != nil || !ok {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			continue
		}
		wg.Add(1)
		go func(idx int, sound *store.Sound) {
			defer wg.Done()
			defer sem.Release(1)

			m, matched := findBestSegment(q, sound, threshold)
			results[idx] = segResult{ok: matched, match: m}
		}(i, sound)
	}
	wg.Wait()

	var out []Match
	for _, r := range results {
		if r.ok {
			out = append(out, r.match)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SoundID < out[j].SoundID
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

type scoredID struct {
	id    int64
	score float64
}

// scoreAll computes sim(q, fp) for every stored fingerprint, in parallel,
// keeping those at or above threshold. Bulk store failures propagate.
func (e *Engine) scoreAll(q *fingerprint.Fingerprint, threshold float64) ([]scoredID, error) {
	all, err := e.store.GetAllFingerprints()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	type result struct {
		id    int64
		score float64
	}
	results := make(chan result, len(ids))
	jobs := make(chan int64, len(ids))
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
		if workers < 1 {
			workers = 1
		}
	}
	for w := 0; w < workers; w++ {
		go func() {
			for id := range jobs {
				results <- result{id: id, score: fingerprint.Similarity(q, all[id])}
			}
		}()
	}
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	out := make([]scoredID, 0, len(ids))
	for range ids {
		r := <-results
		if r.score >= threshold {
			out = append(out, scoredID{id: r.id, score: r.score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out, nil
}

func topN(scored []scoredID, n int) []scoredID {
	if n > 0 && len(scored) > n {
		return scored[:n]
	}
	return scored
}

// findBestSegment implements the find_best_segment algorithm: whole-file
// match for degenerate query durations, otherwise a sliding window over
// the candidate's samples. The hop is widened to
// (len-window)/fineWindowCap when that exceeds a quarter window, which
// keeps the scan to about fineWindowCap+1 windows.
func findBestSegment(q *fingerprint.Fingerprint, sound *store.Sound, threshold float64) (Match, bool) {
	data, err := audio.Load(sound.Filepath)
	if err != nil {
		return Match{}, false
	}

	base := Match{SoundID: sound.ID, Filepath: sound.Filepath, Filename: sound.Filename, FileDuration: data.Duration}

	if q.Duration <= 0 {
		base.MatchStart, base.MatchEnd, base.Score = 0, data.Duration, 0
		return base, base.Score >= threshold
	}
	if q.Duration >= data.Duration {
		fp, err := fingerprint.Extract(data.Samples, data.SampleRate, data.Duration)
		if err != nil {
			return Match{}, false
		}
		base.MatchStart, base.MatchEnd = 0, data.Duration
		base.Score = fingerprint.Similarity(q, fp)
		return base, base.Score >= threshold
	}

	windowSamples := int(math.Round(q.Duration * float64(data.SampleRate)))
	if windowSamples < 1 || windowSamples > len(data.Samples) {
		return Match{}, false
	}
	hopSamples := windowSamples / 4
	if hopSamples < 1 {
		hopSamples = 1
	}
	remaining := len(data.Samples) - windowSamples
	actualHop := hopSamples
	if remaining > 0 {
		capped := remaining / fineWindowCap
		if capped > actualHop {
			actualHop = capped
		}
	}
	if actualHop < 1 {
		actualHop = 1
	}

	bestScore := -1.0
	var bestStart, bestEnd float64
	found := false

	for pos := 0; pos+windowSamples <= len(data.Samples); pos += actualHop {
		seg := data.Samples[pos : pos+windowSamples]
		fp, err := fingerprint.Extract(seg, data.SampleRate, q.Duration)
		if err != nil {
			continue
		}
		score := fingerprint.Similarity(q, fp)
		if score > bestScore {
			bestScore = score
			bestStart = float64(pos) / float64(data.SampleRate)
			bestEnd = bestStart + q.Duration
			found = true
		}
	}

	if !found {
		return Match{}, false
	}
	base.MatchStart, base.MatchEnd, base.Score = bestStart, bestEnd, bestScore
	return base, base.Score >= threshold
}
