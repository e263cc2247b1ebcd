package association

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-operon/internal/annotation"
)

func gene(name string, sense int8, rbsStart, start, end int64) *annotation.Gene {
	return &annotation.Gene{
		Name:     name,
		BSU:      "BSU_" + name,
		Sense:    sense,
		Start:    start,
		End:      end,
		RBSStart: rbsStart,
		RBSEnd:   start + 2,
	}
}

func unit(name string, sense int8, start, end int64, declared ...string) *annotation.TranscriptionUnit {
	return &annotation.TranscriptionUnit{
		Name:          name,
		Sense:         sense,
		Start:         start,
		End:           end,
		DeclaredGenes: declared,
	}
}

func names(genes []*annotation.Gene) []string {
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.Name
	}
	return out
}

func TestAssociate_ExtendsToRBS(t *testing.T) {
	a := gene("a", 1, 79, 100, 200)
	t1 := unit("t1", 1, 90, 210, "a")

	res := NewEngine().Associate([]*annotation.TranscriptionUnit{t1}, []*annotation.Gene{a})

	assert.Equal(t, []string{"a"}, names(t1.Genes))
	assert.Equal(t, int64(79), t1.Start)
	assert.Equal(t, int64(210), t1.End)
	require.Len(t, res.Extensions, 1)
	assert.Equal(t, annotation.Extension{
		TU: "t1", OldStart: 90, OldEnd: 210, NewStart: 79, NewEnd: 210,
		Gene: "a", GeneRBSStart: 79, GeneEnd: 200,
	}, res.Extensions[0])
	assert.Empty(t, res.Orphans)
}

func TestAssociate_UnknownDeclaredGene(t *testing.T) {
	a := gene("a", 1, 79, 100, 200)
	c := gene("c", 1, 479, 500, 600)
	t2 := unit("t2", 1, 50, 300, "b", "a")

	res := NewEngine().Associate([]*annotation.TranscriptionUnit{t2}, []*annotation.Gene{a, c})

	assert.Equal(t, []string{"a"}, names(t2.Genes), "b has no gene record and is never claimed")
	assert.Equal(t, []string{"c"}, res.Orphans, "only existing genes can be orphans")
	assert.Empty(t, res.Extensions)
}

func TestAssociate_DeclaredButNotOverlapping(t *testing.T) {
	rev := gene("r", -1, 79, 100, 200)
	far := gene("f", 1, 900, 921, 1000)
	tu := unit("t", 1, 90, 210, "r", "f")

	res := NewEngine().Associate([]*annotation.TranscriptionUnit{tu}, []*annotation.Gene{rev, far})

	assert.Empty(t, tu.Genes)
	assert.Equal(t, int64(90), tu.Start)
	assert.Equal(t, int64(210), tu.End)
	assert.Empty(t, res.Orphans, "declared genes are not orphans even when unclaimed")
}

func TestAssociate_WideningSeenByLaterGenes(t *testing.T) {
	x := gene("x", 1, 150, 171, 260)
	y := gene("y", 1, 230, 251, 300)

	tu := unit("t", 1, 100, 200, "x", "y")
	res := NewEngine().Associate([]*annotation.TranscriptionUnit{tu}, []*annotation.Gene{x, y})
	assert.Equal(t, []string{"x", "y"}, names(tu.Genes))
	assert.Equal(t, int64(300), tu.End)
	assert.Len(t, res.Extensions, 2)

	// Visiting y first, it lies beyond the original end and is not claimed.
	tu = unit("t", 1, 100, 200, "x", "y")
	res = NewEngine().Associate([]*annotation.TranscriptionUnit{tu}, []*annotation.Gene{y, x})
	assert.Equal(t, []string{"x"}, names(tu.Genes))
	assert.Equal(t, int64(260), tu.End)
	assert.Len(t, res.Extensions, 1)
}

func TestAssociate_DuplicateNames(t *testing.T) {
	d1 := gene("d", 1, 110, 131, 150)
	d2 := gene("d", 1, 160, 181, 190)

	once := unit("once", 1, 100, 200, "d")
	twice := unit("twice", 1, 100, 200, "d", "d")
	NewEngine().Associate([]*annotation.TranscriptionUnit{once, twice}, []*annotation.Gene{d1, d2})

	require.Len(t, once.Genes, 1)
	assert.Same(t, d1, once.Genes[0])
	assert.Len(t, twice.Genes, 2)
}

func TestAssociate_GeneInSeveralUnits(t *testing.T) {
	a := gene("a", 1, 110, 131, 150)
	t1 := unit("t1", 1, 100, 200, "a")
	t2 := unit("t2", 1, 50, 160, "a")

	NewEngine().Associate([]*annotation.TranscriptionUnit{t1, t2}, []*annotation.Gene{a})

	assert.Equal(t, []string{"a"}, names(t1.Genes))
	assert.Equal(t, []string{"a"}, names(t2.Genes))
}

func TestAssociate_BoundsCoverGenes(t *testing.T) {
	tus, genes := syntheticModel(50, 200)
	NewEngine().Associate(tus, genes)

	claimed := 0
	for _, tu := range tus {
		for _, g := range tu.Genes {
			claimed++
			assert.LessOrEqual(t, tu.Start, g.RBSStart, "%s/%s", tu.Name, g.Name)
			assert.GreaterOrEqual(t, tu.End, g.End, "%s/%s", tu.Name, g.Name)
			assert.Equal(t, tu.Sense, g.Sense)
		}
	}
	assert.NotZero(t, claimed)
}

func TestAssociate_Idempotent(t *testing.T) {
	tus, genes := syntheticModel(50, 200)
	engine := NewEngine()
	engine.Associate(tus, genes)

	type snapshot struct {
		start, end int64
		genes      []string
	}
	before := make([]snapshot, len(tus))
	for i, tu := range tus {
		before[i] = snapshot{tu.Start, tu.End, names(tu.Genes)}
	}

	res := engine.Associate(tus, genes)
	assert.Empty(t, res.Extensions)
	for i, tu := range tus {
		assert.Equal(t, before[i], snapshot{tu.Start, tu.End, names(tu.Genes)}, tu.Name)
	}
}

func TestAssociate_OrphansIgnoreExtension(t *testing.T) {
	tus, genes := syntheticModel(30, 120)
	expected := FindOrphans(tus, genes)

	res := NewEngine().Associate(tus, genes)
	assert.Equal(t, expected, res.Orphans)

	declared := map[string]bool{}
	for _, tu := range tus {
		for _, n := range tu.DeclaredGenes {
			declared[n] = true
		}
	}
	for _, g := range genes {
		assert.Equal(t, !declared[g.Name], contains(res.Orphans, g.Name), g.Name)
	}
}

func TestAssociate_ParallelMatchesSequential(t *testing.T) {
	seqTUs, genes := syntheticModel(80, 300)
	parTUs, _ := syntheticModel(80, 300)

	seqRes := NewEngine().Associate(seqTUs, genes)

	engine := NewEngine()
	engine.SetWorkers(4)
	parRes := engine.Associate(parTUs, genes)

	assert.Equal(t, seqRes.Extensions, parRes.Extensions)
	assert.Equal(t, seqRes.Orphans, parRes.Orphans)
	for i := range seqTUs {
		assert.Equal(t, seqTUs[i].Start, parTUs[i].Start)
		assert.Equal(t, seqTUs[i].End, parTUs[i].End)
		assert.Equal(t, names(seqTUs[i].Genes), names(parTUs[i].Genes))
	}
}

func TestResult_Apply(t *testing.T) {
	report := annotation.NewReport()
	res := &Result{
		Orphans:    []string{"o"},
		Extensions: []annotation.Extension{{TU: "t"}},
	}
	res.Apply(report)
	assert.Equal(t, []string{"o"}, report.Orphans)
	assert.Len(t, report.Extensions, 1)
}

// syntheticModel builds a deterministic set of genes laid out every 100
// bases on alternating strands, and units covering runs of them with
// deliberately short bounds so that some claims widen the unit.
func syntheticModel(nTU, nGene int) ([]*annotation.TranscriptionUnit, []*annotation.Gene) {
	genes := make([]*annotation.Gene, nGene)
	for i := range genes {
		start := int64(i*100 + 30)
		sense := int8(1)
		if i%3 == 2 {
			sense = -1
		}
		genes[i] = gene(fmt.Sprintf("g%d", i), sense, start-21, start, start+59)
	}

	tus := make([]*annotation.TranscriptionUnit, nTU)
	for k := range tus {
		first := (k * 7) % (nGene - 3)
		var declared []string
		for j := first; j < first+3; j++ {
			declared = append(declared, genes[j].Name)
		}
		if k%5 == 0 {
			declared = append(declared, "missing")
		}
		start := genes[first].Start + int64(k%4)*5
		end := genes[first+2].End - int64(k%3)*10
		tus[k] = unit(fmt.Sprintf("tu%d", k), genes[first].Sense, start, end, declared...)
	}
	return tus, genes
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
