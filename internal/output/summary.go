package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/model"
)

// WriteSummary writes aligned load statistics for m.
func WriteSummary(w io.Writer, m *model.Model) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	links := 0
	for _, tu := range m.TUs {
		links += len(tu.Genes)
	}

	fmt.Fprintf(tw, "\nLoad Summary:\n")
	fmt.Fprintf(tw, "  DNA length:\t%d\n", m.Sequence.Len())
	fmt.Fprintf(tw, "  Genes loaded:\t%d\n", len(m.Genes))
	fmt.Fprintf(tw, "  Genes rejected:\t%d\n", m.Report.Rejected())
	fmt.Fprintf(tw, "  Transcription units:\t%d\n", len(m.TUs))
	fmt.Fprintf(tw, "  Gene associations:\t%d\n", links)
	fmt.Fprintf(tw, "  TU extensions:\t%d\n", len(m.Report.Extensions))
	fmt.Fprintf(tw, "  Orphan genes:\t%d\n", len(m.Report.Orphans))
	if m.GeneTUs != nil {
		fmt.Fprintf(tw, "  Per-gene units:\t%d\n", len(m.GeneTUs))
	}
	if m.Overlaps != nil {
		fmt.Fprintf(tw, "  Overlapping TU pairs:\t%d\n", len(m.Overlaps))
	}

	fmt.Fprintf(tw, "\nGene Categories:\n")
	for _, c := range annotation.Categories {
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", c, c.Severity(), m.Report.Count(c))
	}

	return tw.Flush()
}
