package vecdb

import "container/heap"

// selectTopK returns the k scoreIndex entries with the smallest score, sorted
// ascending by score. NaN scores are treated as worse than any finite score and are
// dropped before being considered. Ties are broken deterministically by index.
//
// It maintains a max-heap of size <= k: each candidate is pushed if the heap isn't
// yet full, or pushed-and-popped in place of the current worst entry if it scores
// strictly better. This keeps the working set bounded to k regardless of how many
// candidates are scanned.
func selectTopK(candidates []scoreIndex, k int) []scoreIndex {
	if k < 1 {
		k = 1
	}

	h := make(worstFirstHeap, 0, k)
	for _, c := range candidates {
		if isNaN(c.score) {
			continue
		}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if less(c, h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	out := make([]scoreIndex, len(h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(scoreIndex)
	}
	return out
}

func isNaN(f float32) bool {
	return f != f
}

// less orders two candidates for the selector: smaller score wins; ties break by
// index for a deterministic, reproducible order within a single call.
func less(a, b scoreIndex) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	return a.index < b.index
}

// worstFirstHeap is a max-heap by (score, index) — its root is always the worst
// (largest) candidate currently held, so it can be evicted in O(log k) when a
// better candidate arrives.
type worstFirstHeap []scoreIndex

func (h worstFirstHeap) Len() int { return len(h) }
func (h worstFirstHeap) Less(i, j int) bool {
	// Max-heap: the "lesser" heap element is the one that sorts worse.
	return less(h[j], h[i])
}
func (h worstFirstHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *worstFirstHeap) Push(x any) {
	*h = append(*h, x.(scoreIndex))
}

func (h *worstFirstHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
