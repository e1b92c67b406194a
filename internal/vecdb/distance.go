package vecdb

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelScoreThreshold is the collection size below which scoring runs serially
// in the calling goroutine instead of fanning out across a worker pool — below this
// size the scheduling overhead of errgroup dominates the scan itself.
const parallelScoreThreshold = 512

// Normalize returns a copy of v scaled to unit L2 norm. A zero vector is returned
// unchanged (there is no direction to normalize to).
func Normalize(v []float32) []float32 {
	n := l2Norm(v)
	out := make([]float32, len(v))
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, f := range v {
		out[i] = f / n
	}
	return out
}

func l2Norm(v []float32) float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sum))
}

// CacheAttr computes the per-query value that a metric's kernel can reuse across
// every embedding it scores: for Cosine it is the query's L2 norm (so a
// not-yet-normalized query still scores correctly); other metrics don't use it.
func CacheAttr(d Distance, query []float32) float32 {
	if d == Cosine {
		return l2Norm(query)
	}
	return 0
}

// Score computes the sortable score of stored against query under metric d, reusing
// the cacheAttr from CacheAttr. Smaller is always better: Cosine and Dot are negated
// dot products, Euclidean is squared distance. Callers must ensure len(stored) ==
// len(query); kernels do not re-check dimensions.
func Score(d Distance, stored, query []float32, cacheAttr float32) float32 {
	switch d {
	case Cosine:
		return scoreCosine(stored, query, cacheAttr)
	case Dot:
		return -dot(stored, query)
	case Euclidean:
		return squaredEuclidean(stored, query)
	default:
		return squaredEuclidean(stored, query)
	}
}

// scoreCosine assumes stored is already unit-normalized (Collection.Insert
// normalizes on write) and normalizes query on the fly using the precomputed norm.
func scoreCosine(stored, query []float32, queryNorm float32) float32 {
	if queryNorm == 0 {
		return 0
	}
	var d float64
	for i := range stored {
		d += float64(stored[i]) * float64(query[i])
	}
	return float32(-d / float64(queryNorm))
}

func dot(a, b []float32) float32 {
	var d float64
	for i := range a {
		d += float64(a[i]) * float64(b[i])
	}
	return float32(d)
}

func squaredEuclidean(a, b []float32) float32 {
	var d float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		d += diff * diff
	}
	return float32(d)
}

// scoreIndex pairs a sortable score with the index of the embedding it was
// computed for, used as the candidate unit fed into the top-k selector.
type scoreIndex struct {
	score float32
	index int
}

// matchAll evaluates filter against every embedding, in parallel once the
// collection reaches parallelScoreThreshold, returning a matched[i] mask. Used by
// DeleteByMetadata, which the spec requires to compute its match set in parallel
// and remove in a distinct second pass (§4.4).
func matchAll(embeddings []Embedding, filter Filter) []bool {
	matched := make([]bool, len(embeddings))

	if len(embeddings) < parallelScoreThreshold {
		for i, e := range embeddings {
			matched[i] = Match(filter, e)
		}
		return matched
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(embeddings) {
		workers = len(embeddings)
	}
	chunk := (len(embeddings) + workers - 1) / workers

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(embeddings) {
			break
		}
		end := start + chunk
		if end > len(embeddings) {
			end = len(embeddings)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				matched[i] = Match(filter, embeddings[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return matched
}

// scoreCandidates scores every embedding whose index is in candidates against
// query under metric d, in parallel once the candidate count reaches
// parallelScoreThreshold. Results are returned in no particular order; the
// selector imposes the final ordering.
func scoreCandidates(embeddings []Embedding, candidates []int, d Distance, query []float32) []scoreIndex {
	cacheAttr := CacheAttr(d, query)

	if len(candidates) < parallelScoreThreshold {
		out := make([]scoreIndex, len(candidates))
		for i, idx := range candidates {
			out[i] = scoreIndex{score: Score(d, embeddings[idx].Vector, query, cacheAttr), index: idx}
		}
		return out
	}

	out := make([]scoreIndex, len(candidates))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(candidates) {
			break
		}
		end := start + chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				idx := candidates[i]
				out[i] = scoreIndex{score: Score(d, embeddings[idx].Vector, query, cacheAttr), index: idx}
			}
			return nil
		})
	}
	_ = g.Wait() // scoring never returns an error; Wait only joins goroutines

	return out
}
