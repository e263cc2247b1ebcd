package annotation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geneHeader = "name\tBSU\tstart\tend\tRBSstart\tRBSend\tbrin_DNA\tseq\taaseq\tTUs\tgene_category\n"

func row(fields ...string) string {
	return strings.Join(fields, "\t") + "\n"
}

// codingSeq returns a start codon, n lysine codons and a stop codon.
func codingSeq(n int) string {
	return "atg" + strings.Repeat("aaa", n) + "taa"
}

func protein(n int) string {
	return "M" + strings.Repeat("K", n)
}

func readGenes(t *testing.T, rows ...string) ([]*Gene, *Report) {
	t.Helper()
	report := NewReport()
	genes, err := ReadGenes(strings.NewReader(geneHeader+strings.Join(rows, "")), 1000, report)
	require.NoError(t, err)
	return genes, report
}

func TestReadGenes_SingleGene(t *testing.T) {
	genes, report := readGenes(t,
		row("test_name", "test_bsu", "0", "8", "0", "0", "1", "atgaaatag", "MA", "test_tus", "CDS"))

	require.Len(t, genes, 1)
	g := genes[0]
	assert.Equal(t, "test_name", g.Name)
	assert.Equal(t, "test_bsu", g.BSU)
	assert.Equal(t, []string{"test_tus"}, g.DeclaredTUs)
	assert.Equal(t, int8(1), g.Sense)
	assert.Equal(t, []string{"test_name"}, report.Genes(CategoryNoRBS))
	assert.Zero(t, report.Rejected())
	for _, c := range []Category{CategoryInvalidRBS, CategoryRBSTooFar, CategoryInvalidStart,
		CategoryInvalidStop, CategoryInvalidLength, CategoryAAMismatch} {
		assert.Empty(t, report.Genes(c), string(c))
	}
}

func TestReadGenes_DefaultRBS(t *testing.T) {
	genes, report := readGenes(t,
		row("a", "BSU00010", "100", "201", "0", "0", "1", codingSeq(32), protein(32), "", "CDS"))

	require.Len(t, genes, 1)
	g := genes[0]
	assert.Equal(t, int64(100), g.Start)
	assert.Equal(t, int64(201), g.End)
	assert.Equal(t, int64(79), g.RBSStart)
	assert.Equal(t, int64(102), g.RBSEnd)
	assert.Empty(t, g.DeclaredTUs)
	assert.Equal(t, []string{"a"}, report.Genes(CategoryNoRBS))
}

func TestReadGenes_RBSCorrections(t *testing.T) {
	seq, aa := codingSeq(32), protein(32)
	genes, report := readGenes(t,
		row("valid", "B1", "100", "201", "60", "70", "1", seq, aa, "", "CDS"),
		row("after_start", "B2", "100", "201", "110", "115", "1", seq, aa, "", "CDS"),
		row("too_far", "B3", "100", "201", "40", "45", "1", seq, aa, "", "CDS"),
		row("boundary", "B4", "100", "201", "50", "55", "1", seq, aa, "", "CDS"),
	)

	require.Len(t, genes, 4)
	assert.Equal(t, int64(60), genes[0].RBSStart)
	assert.Equal(t, int64(79), genes[1].RBSStart)
	assert.Equal(t, int64(79), genes[2].RBSStart)
	assert.Equal(t, int64(50), genes[3].RBSStart, "RBS exactly 50 bases upstream is kept")
	for _, g := range genes {
		assert.Equal(t, g.Start+2, g.RBSEnd, g.Name)
	}

	assert.Equal(t, []string{"after_start"}, report.Genes(CategoryInvalidRBS))
	assert.Equal(t, []string{"too_far"}, report.Genes(CategoryRBSTooFar))
	assert.Empty(t, report.Genes(CategoryNoRBS))
}

func TestReadGenes_ReverseStrand(t *testing.T) {
	genes, _ := readGenes(t,
		row("rev", "B1", "801", "902", "903", "910", "-1", codingSeq(32), protein(32), "T1,T2", "CDS"))

	require.Len(t, genes, 1)
	g := genes[0]
	assert.Equal(t, int8(-1), g.Sense)
	assert.Equal(t, int64(99), g.Start)
	assert.Equal(t, int64(200), g.End)
	assert.Equal(t, int64(91), g.RBSStart)
	assert.Equal(t, int64(101), g.RBSEnd)
	assert.Equal(t, []string{"T1", "T2"}, g.DeclaredTUs)
}

func TestReadGenes_Rejections(t *testing.T) {
	noStop := "atg" + strings.Repeat("aaa", 33)
	premature := "atgtaa" + strings.Repeat("aaa", 31) + "taa"
	badStart := "aaa" + strings.Repeat("aaa", 32) + "taa"

	genes, report := readGenes(t,
		row("ok", "B1", "100", "201", "0", "0", "1", codingSeq(32), protein(32), "", "CDS"),
		row("no_stop", "B2", "100", "201", "0", "0", "1", noStop, protein(32), "", "CDS"),
		row("premature", "B3", "100", "201", "0", "0", "1", premature, protein(32), "", "CDS"),
		row("short_aa", "B4", "100", "201", "0", "0", "1", codingSeq(32), "MK", "", "CDS"),
		row("bad_start", "B5", "100", "201", "0", "0", "1", badStart, protein(32), "", "CDS"),
		row("trna", "B6", "300", "310", "0", "0", "1", "x", "", "", "tRNA"),
	)

	names := make([]string, len(genes))
	for i, g := range genes {
		names[i] = g.Name
	}
	assert.Equal(t, []string{"ok", "bad_start"}, names)

	assert.Equal(t, []string{"no_stop"}, report.Genes(CategoryInvalidStop))
	assert.Equal(t, []string{"premature"}, report.Genes(CategoryInvalidLength))
	assert.Equal(t, []string{"short_aa"}, report.Genes(CategoryAAMismatch))
	assert.Equal(t, []string{"bad_start"}, report.Genes(CategoryInvalidStart))
	assert.Equal(t, 3, report.Rejected())
	assert.NotContains(t, report.Genes(CategoryNoRBS), "trna", "non-coding rows are skipped silently")
}

func TestReadGenes_FrameShiftRecordedOnce(t *testing.T) {
	seq := "atgaaaataa"
	genes, report := readGenes(t,
		row("shift", "B1", "100", "109", "0", "0", "1", seq, "MKI", "", "CDS"))

	assert.Empty(t, genes)
	assert.Equal(t, []string{"shift"}, report.Genes(CategoryInvalidLength))
	assert.Equal(t, 1, report.Rejected())
}

func TestReadGenes_BuiltGeneInvariants(t *testing.T) {
	genes, _ := readGenes(t,
		row("a", "B1", "100", "201", "0", "0", "1", codingSeq(32), protein(32), "", "CDS"),
		row("b", "B2", "10", "18", "0", "0", "1", "gtgaaatga", "VK", "", "CDS"),
		row("c", "B3", "500", "508", "0", "0", "-1", "ttgcattag", "LH", "", "CDS"),
	)

	require.Len(t, genes, 3)
	for _, g := range genes {
		assert.Less(t, g.Start, g.End, g.Name)
		assert.Zero(t, g.Length()%3, g.Name)
		assert.Equal(t, len(g.Sequence), 3*(len(g.AASequence)+1), g.Name)
	}
	assert.Equal(t, 32, genes[0].AAComposition[8], "lysines after initiator")
}

func TestReadGenes_Fatal(t *testing.T) {
	tests := []struct {
		name string
		row  string
		msg  string
	}{
		{"start after end", row("x", "B", "200", "100", "0", "0", "1", "atgtaa", "M", "", "CDS"), "not before end"},
		{"sequence length", row("x", "B", "100", "201", "0", "0", "1", "atgtaa", "M", "", "CDS"), "sequence length"},
		{"non-integer", row("x", "B", "abc", "201", "0", "0", "1", "atgtaa", "M", "", "CDS"), "invalid start"},
		{"short row", "x\tB\t100\n", "expected at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGenes(strings.NewReader(geneHeader+tt.row), 1000, NewReport())
			require.Error(t, err)

			var malformed *MalformedInputError
			require.True(t, errors.As(err, &malformed), "got %T", err)
			assert.Equal(t, 2, malformed.Line)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewGeneReader_MissingColumn(t *testing.T) {
	header := strings.Replace(geneHeader, "aaseq", "protein", 1)
	_, err := NewGeneReader(strings.NewReader(header), 1000, NewReport())
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "aaseq", schemaErr.Column)
	assert.Equal(t, "gene", schemaErr.Table)
}

func TestNewGeneReader_ColumnOrder(t *testing.T) {
	header := "gene_category\tTUs\taaseq\tseq\tbrin_DNA\tRBSend\tRBSstart\tend\tstart\tBSU\tname\textra\n"
	gr, err := NewGeneReader(strings.NewReader(header+
		row("CDS", "", "MK", "atgaaataa", "1", "0", "0", "9", "1", "B1", "g1", "ignored")), 100, NewReport())
	require.NoError(t, err)

	cols := gr.Columns()
	assert.Equal(t, 10, cols.Name)
	assert.Equal(t, 0, cols.GeneCategory)

	genes, err := gr.ReadAll()
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, "g1", genes[0].Name)
}

func TestNewGeneReader_Empty(t *testing.T) {
	_, err := NewGeneReader(strings.NewReader(""), 1000, NewReport())
	var malformed *MalformedInputError
	assert.True(t, errors.As(err, &malformed))
}
