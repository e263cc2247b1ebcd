package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/genome"
	"github.com/inodb/vibe-operon/internal/model"
)

func testModel(t *testing.T) *model.Model {
	t.Helper()
	seq, err := genome.NewSequence(strings.Repeat("acgt", 25))
	require.NoError(t, err)

	report := annotation.NewReport()
	report.Record(annotation.CategoryNoRBS, "a")
	report.Record(annotation.CategoryNoRBS, "b")
	report.Record(annotation.CategoryInvalidStop, "x")
	report.Reject()
	report.Orphans = []string{"b"}
	report.Extensions = []annotation.Extension{{TU: "t1", Gene: "a"}}

	a := &annotation.Gene{Name: "a", Sense: 1}
	b := &annotation.Gene{Name: "b", Sense: 1}
	return &model.Model{
		Sequence: seq,
		Genes:    []*annotation.Gene{a, b},
		TUs: []*annotation.TranscriptionUnit{
			{Name: "t1", Sense: 1, Genes: []*annotation.Gene{a}},
			{Name: "t2", Sense: 1},
		},
		Report:  report,
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestObserve(t *testing.T) {
	c := New()
	c.Observe(testModel(t))

	assert.Equal(t, 100.0, testutil.ToFloat64(c.dnaLength))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.genes))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.tus))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.associated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.extensions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.orphans))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.overlaps))
	assert.Equal(t, 1.5, testutil.ToFloat64(c.duration))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.flagged.WithLabelValues("no_rbs", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flagged.WithLabelValues("invalid_stop_codon", "rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.flagged.WithLabelValues("invalid_rbs", "warning")))
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.Observe(testModel(t))

	path := filepath.Join(t.TempDir(), "vibe_operon.prom")
	require.NoError(t, c.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, "vibe_operon_genes_loaded 2")
	assert.Contains(t, text, `vibe_operon_genes_flagged{category="no_rbs",severity="warning"} 2`)
	assert.Contains(t, text, "# HELP vibe_operon_orphan_genes")
}

func TestWriteTextfile_BadDirectory(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "out.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics textfile")
}
