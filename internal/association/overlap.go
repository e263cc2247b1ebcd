package association

import (
	"fmt"
	"sort"

	"github.com/inodb/vibe-operon/internal/annotation"
)

// Overlap is a pair of same-strand units that share bases without ending at
// the same terminator. Units ending together are a normal alternative
// promoter arrangement and are not reported.
type Overlap struct {
	First       string
	FirstStart  int64
	FirstEnd    int64
	Second      string
	SecondStart int64
	SecondEnd   int64
	Sense       int8
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s [%d:%d] overlaps %s [%d:%d]",
		o.First, o.FirstStart, o.FirstEnd, o.Second, o.SecondStart, o.SecondEnd)
}

// FindOverlaps reports every unordered pair of overlapping units once, the
// earlier unit in input order first. tus is not modified.
func FindOverlaps(tus []*annotation.TranscriptionUnit) []Overlap {
	bySense := make(map[int8][]span)
	for i, tu := range tus {
		bySense[tu.Sense] = append(bySense[tu.Sense], span{start: tu.Start, end: tu.End, id: i})
	}
	indexes := make(map[int8]*spanIndex, len(bySense))
	for sense, spans := range bySense {
		indexes[sense] = buildSpanIndex(spans)
	}

	type pair struct{ i, j int }
	var pairs []pair
	for i, tu := range tus {
		for _, j := range indexes[tu.Sense].query(tu.Start, tu.End) {
			if j <= i || tus[j].End == tu.End {
				continue
			}
			pairs = append(pairs, pair{i, j})
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].i != pairs[b].i {
			return pairs[a].i < pairs[b].i
		}
		return pairs[a].j < pairs[b].j
	})

	overlaps := make([]Overlap, len(pairs))
	for k, p := range pairs {
		a, b := tus[p.i], tus[p.j]
		overlaps[k] = Overlap{
			First:       a.Name,
			FirstStart:  a.Start,
			FirstEnd:    a.End,
			Second:      b.Name,
			SecondStart: b.Start,
			SecondEnd:   b.End,
			Sense:       a.Sense,
		}
	}
	return overlaps
}
