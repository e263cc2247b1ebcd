package annotation

import "fmt"

// RBS placement rules applied when an annotated binding site is missing or
// implausible.
const (
	DefaultRBSOffset = 21 // bases upstream of the start codon
	MaxRBSDistance   = 50 // farthest accepted RBS start upstream of the start codon
)

// Gene is a validated coding sequence. Coordinates are 1-based, inclusive
// and numbered on the gene's own strand.
type Gene struct {
	Name          string
	BSU           string
	Start         int64
	End           int64
	RBSStart      int64
	RBSEnd        int64
	Sense         int8
	Sequence      string
	AASequence    string
	AAComposition [20]int  // residue counts over genome.AminoAcids, initiator excluded
	DeclaredTUs   []string // TU names from the annotation table
}

// Length returns the coding sequence length in bases.
func (g *Gene) Length() int64 {
	return g.End - g.Start + 1
}

// String formats the gene with its RBS-to-stop span.
func (g *Gene) String() string {
	return fmt.Sprintf("%s [%d:%d]", g.Name, g.RBSStart, g.End)
}
