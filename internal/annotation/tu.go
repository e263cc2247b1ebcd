package annotation

import "fmt"

// TranscriptionUnit is a transcribed span and the genes it produces.
// Start and End may be widened during gene association.
type TranscriptionUnit struct {
	Name          string
	Start         int64
	End           int64
	Sense         int8
	Sigma         string
	Composition   [4]int   // a, c, g, t counts over the annotated span
	DeclaredGenes []string // gene names from the annotation table
	Genes         []*Gene  // associated genes, in claim order
}

// Overlaps reports whether g lies on the same strand and its RBS-to-stop
// span intersects the unit.
func (tu *TranscriptionUnit) Overlaps(g *Gene) bool {
	return g.Sense == tu.Sense && g.End >= tu.Start && tu.End >= g.RBSStart
}

// Contains reports whether g, including its RBS, lies entirely inside the unit.
func (tu *TranscriptionUnit) Contains(g *Gene) bool {
	return g.Sense == tu.Sense && g.RBSStart >= tu.Start && g.End <= tu.End
}

// Length returns the span length in bases.
func (tu *TranscriptionUnit) Length() int64 {
	return tu.End - tu.Start + 1
}

// String formats the unit with its current span.
func (tu *TranscriptionUnit) String() string {
	return fmt.Sprintf("%s [%d:%d]", tu.Name, tu.Start, tu.End)
}
