// Package output provides model and report formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-operon/internal/annotation"
)

// ModelWriter writes transcription units in tab-delimited format, one row
// per unit.
type ModelWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewModelWriter creates a new tab-delimited unit writer.
func NewModelWriter(w io.Writer) *ModelWriter {
	return &ModelWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#TU",
			"Start",
			"End",
			"Strand",
			"Sigma",
			"Length",
			"A",
			"C",
			"G",
			"T",
			"Declared_Genes",
			"Genes",
		},
	}
}

// WriteHeader writes the header line.
func (mw *ModelWriter) WriteHeader() error {
	_, err := mw.w.WriteString(strings.Join(mw.columns, "\t") + "\n")
	return err
}

// Write writes a single transcription unit.
func (mw *ModelWriter) Write(tu *annotation.TranscriptionUnit) error {
	genes := make([]string, len(tu.Genes))
	for i, g := range tu.Genes {
		genes[i] = g.Name
	}

	values := []string{
		tu.Name,
		strconv.FormatInt(tu.Start, 10),
		strconv.FormatInt(tu.End, 10),
		strand(tu.Sense),
		orDash(tu.Sigma),
		strconv.FormatInt(tu.Length(), 10),
		strconv.Itoa(tu.Composition[0]),
		strconv.Itoa(tu.Composition[1]),
		strconv.Itoa(tu.Composition[2]),
		strconv.Itoa(tu.Composition[3]),
		list(tu.DeclaredGenes),
		list(genes),
	}

	_, err := mw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (mw *ModelWriter) Flush() error {
	return mw.w.Flush()
}

// GeneWriter writes validated genes in tab-delimited format.
type GeneWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewGeneWriter creates a new tab-delimited gene writer.
func NewGeneWriter(w io.Writer) *GeneWriter {
	return &GeneWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Gene",
			"BSU",
			"Start",
			"End",
			"RBS_Start",
			"RBS_End",
			"Strand",
			"Length",
			"Protein_Length",
			"TUs",
		},
	}
}

// WriteHeader writes the header line.
func (gw *GeneWriter) WriteHeader() error {
	_, err := gw.w.WriteString(strings.Join(gw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene.
func (gw *GeneWriter) Write(g *annotation.Gene) error {
	values := []string{
		g.Name,
		orDash(g.BSU),
		strconv.FormatInt(g.Start, 10),
		strconv.FormatInt(g.End, 10),
		strconv.FormatInt(g.RBSStart, 10),
		strconv.FormatInt(g.RBSEnd, 10),
		strand(g.Sense),
		strconv.FormatInt(g.Length(), 10),
		strconv.Itoa(len(g.AASequence)),
		list(g.DeclaredTUs),
	}

	_, err := gw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (gw *GeneWriter) Flush() error {
	return gw.w.Flush()
}

func strand(sense int8) string {
	if sense == 1 {
		return "+"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
