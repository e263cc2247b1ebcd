package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/association"
)

// WriteLog writes the load report as a plain-text log: one paragraph per
// gene category, the orphan genes, every unit extension and, when given,
// the overlapping unit pairs.
func WriteLog(w io.Writer, report *annotation.Report, overlaps []association.Overlap) error {
	bw := bufio.NewWriter(w)

	for _, c := range annotation.Categories {
		fmt.Fprintf(bw, "%s: %s.\n\n", c.Description(), strings.Join(report.Genes(c), ", "))
	}

	fmt.Fprintf(bw, "Removing orphan genes: %s.\n", strings.Join(report.Orphans, ", "))
	fmt.Fprintf(bw, "Removed %d orphans.\n\n", len(report.Orphans))

	bw.WriteString("Adding remaining genes to TUs...\n")
	for _, ext := range report.Extensions {
		bw.WriteString(ext.String() + "\n")
	}
	bw.WriteString("Done.\n")

	if len(overlaps) > 0 {
		fmt.Fprintf(bw, "\nFound %d overlapping TU pairs:\n", len(overlaps))
		for _, o := range overlaps {
			bw.WriteString(o.String() + "\n")
		}
	}

	return bw.Flush()
}

// WriteGeneList writes one line per unit: its name followed by the BSU of
// each associated gene, space separated. When sigma is not empty only units
// with that sigma factor are written.
func WriteGeneList(w io.Writer, tus []*annotation.TranscriptionUnit, sigma string) error {
	bw := bufio.NewWriter(w)
	for _, tu := range tus {
		if sigma != "" && tu.Sigma != sigma {
			continue
		}
		fields := make([]string, 0, len(tu.Genes)+1)
		fields = append(fields, tu.Name)
		for _, g := range tu.Genes {
			fields = append(fields, g.BSU)
		}
		bw.WriteString(strings.Join(fields, " ") + "\n")
	}
	return bw.Flush()
}
