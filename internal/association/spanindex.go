package association

import "sort"

// spanIndex answers range-overlap queries over closed intervals using a
// slice sorted by start. Spans are loaded once and never modified.
type spanIndex struct {
	spans  []span
	maxEnd []int64 // maxEnd[i] = max(end) for spans[:i+1]
}

type span struct {
	start int64
	end   int64
	id    int
}

func buildSpanIndex(spans []span) *spanIndex {
	if len(spans) == 0 {
		return &spanIndex{}
	}

	sorted := make([]span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].start < sorted[j].start
	})

	// Prefix-max array: once maxEnd[i] falls before a query, nothing at or
	// below i can reach it.
	maxEnd := make([]int64, len(sorted))
	maxEnd[0] = sorted[0].end
	for i := 1; i < len(sorted); i++ {
		maxEnd[i] = max(maxEnd[i-1], sorted[i].end)
	}

	return &spanIndex{spans: sorted, maxEnd: maxEnd}
}

// query returns the ids of all spans sharing at least one position with
// [lo, hi], in descending start order.
func (x *spanIndex) query(lo, hi int64) []int {
	if len(x.spans) == 0 {
		return nil
	}

	// Candidates are spans starting at or before hi: indices [0, n).
	n := sort.Search(len(x.spans), func(i int) bool {
		return x.spans[i].start > hi
	})

	var ids []int
	for i := n - 1; i >= 0; i-- {
		if x.maxEnd[i] < lo {
			break
		}
		if x.spans[i].end >= lo {
			ids = append(ids, x.spans[i].id)
		}
	}
	return ids
}
