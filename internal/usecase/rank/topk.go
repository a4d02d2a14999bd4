package rank

import (
	"container/heap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
)

// ranked pairs a result with its candidate position so ties keep the
// index's original ascending-distance order.
type ranked struct {
	pos    int
	result domain.SearchResult
}

// minHeap keeps the worst of the current selection at the root.
type minHeap []ranked

func (h minHeap) Len() int { return len(h) }

func (h minHeap) Less(i, j int) bool {
	if h[i].result.HybridScore != h[j].result.HybridScore {
		return h[i].result.HybridScore < h[j].result.HybridScore
	}
	return h[i].pos > h[j].pos
}

func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(ranked)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// beats reports whether a outranks b: higher score, or equal score at an
// earlier candidate position.
func beats(a, b ranked) bool {
	if a.result.HybridScore != b.result.HybridScore {
		return a.result.HybridScore > b.result.HybridScore
	}
	return a.pos < b.pos
}

// selectTop returns the k highest-scoring results in descending score
// order without sorting the full slice. Equal scores resolve in favor of
// the earlier candidate.
func selectTop(results []domain.SearchResult, k int) []domain.SearchResult {
	if k <= 0 || len(results) == 0 {
		return nil
	}
	if k > len(results) {
		k = len(results)
	}

	h := make(minHeap, 0, k)
	for pos, res := range results {
		item := ranked{pos: pos, result: res}
		if len(h) < k {
			heap.Push(&h, item)
			continue
		}
		if beats(item, h[0]) {
			h[0] = item
			heap.Fix(&h, 0)
		}
	}

	out := make([]domain.SearchResult, k)
	for i := k - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(ranked).result
	}
	return out
}
