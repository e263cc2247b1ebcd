package association

import (
	"fmt"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/genome"
)

// GeneTUSuffix is appended to a gene's BSU to name its synthetic unit.
const GeneTUSuffix = "_rna"

// GeneTUs builds one transcription unit per gene spanning exactly the gene's
// RBS-to-stop region, with the gene already associated. Used to model each
// gene as its own transcript.
func GeneTUs(seq *genome.Sequence, genes []*annotation.Gene) ([]*annotation.TranscriptionUnit, error) {
	tus := make([]*annotation.TranscriptionUnit, 0, len(genes))
	for _, g := range genes {
		bases, err := seq.Span(g.RBSStart, g.End, g.Sense)
		if err != nil {
			return nil, fmt.Errorf("gene %s: %w", g.Name, err)
		}
		tus = append(tus, &annotation.TranscriptionUnit{
			Name:          g.BSU + GeneTUSuffix,
			Start:         g.RBSStart,
			End:           g.End,
			Sense:         g.Sense,
			Composition:   genome.Composition(bases),
			DeclaredGenes: []string{g.Name},
			Genes:         []*annotation.Gene{g},
		})
	}
	return tus, nil
}
