// Package association links genes to the transcription units that produce
// them and runs diagnostics over the unit collection.
package association

import (
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/annotation"
)

// Result holds the findings of an association run.
type Result struct {
	Orphans    []string               // gene names no unit declares
	Extensions []annotation.Extension // unit widenings, in unit order
}

// Apply copies the findings into report.
func (r *Result) Apply(report *annotation.Report) {
	report.Orphans = r.Orphans
	report.Extensions = r.Extensions
}

// Engine associates genes with transcription units.
type Engine struct {
	workers int
	logger  *zap.Logger
}

// NewEngine creates a sequential engine.
func NewEngine() *Engine {
	return &Engine{workers: 1, logger: zap.NewNop()}
}

// SetWorkers sets the number of units processed concurrently.
// Values below 1 use runtime.NumCPU().
func (e *Engine) SetWorkers(n int) {
	e.workers = n
}

// SetLogger sets the logger for extension and orphan messages.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Associate fills each unit's Genes with the declared genes it overlaps,
// widening units that do not fully contain a claimed gene. Any previous
// association on the units is discarded. genes is only read.
func (e *Engine) Associate(tus []*annotation.TranscriptionUnit, genes []*annotation.Gene) *Result {
	res := &Result{Orphans: FindOrphans(tus, genes)}
	for _, name := range res.Orphans {
		e.logger.Debug("orphan gene", zap.String("gene", name))
	}

	index := newNameIndex(genes)

	var perTU [][]annotation.Extension
	if e.workers == 1 || len(tus) < 2 {
		perTU = make([][]annotation.Extension, len(tus))
		for i, tu := range tus {
			perTU[i] = associateTU(tu, genes, index)
		}
	} else {
		perTU = e.associateParallel(tus, genes, index)
	}

	for _, exts := range perTU {
		for _, ext := range exts {
			e.logger.Info("extended transcription unit",
				zap.String("tu", ext.TU),
				zap.String("gene", ext.Gene),
				zap.Int64("old_start", ext.OldStart),
				zap.Int64("old_end", ext.OldEnd),
				zap.Int64("new_start", ext.NewStart),
				zap.Int64("new_end", ext.NewEnd))
		}
		res.Extensions = append(res.Extensions, exts...)
	}

	return res
}

// nameIndex maps a gene name to the positions of the genes bearing it.
type nameIndex map[string][]int

func newNameIndex(genes []*annotation.Gene) nameIndex {
	idx := make(nameIndex, len(genes))
	for i, g := range genes {
		idx[g.Name] = append(idx[g.Name], i)
	}
	return idx
}

// candidates returns, in gene input order, every gene whose name the unit
// declares.
func (idx nameIndex) candidates(declared map[string]int) []int {
	var out []int
	for name := range declared {
		out = append(out, idx[name]...)
	}
	sort.Ints(out)
	return out
}

// associateTU claims genes for a single unit. Only tu is written.
//
// Genes are visited in input order and tested against the unit's current
// bounds, so a widening caused by one gene is seen by the genes after it.
// Each declared name can be claimed as many times as it is declared.
func associateTU(tu *annotation.TranscriptionUnit, genes []*annotation.Gene, index nameIndex) []annotation.Extension {
	tu.Genes = nil

	pending := make(map[string]int, len(tu.DeclaredGenes))
	for _, name := range tu.DeclaredGenes {
		pending[name]++
	}

	var exts []annotation.Extension
	for _, i := range index.candidates(pending) {
		g := genes[i]
		if pending[g.Name] == 0 || !tu.Overlaps(g) {
			continue
		}
		tu.Genes = append(tu.Genes, g)
		pending[g.Name]--

		if tu.Contains(g) {
			continue
		}
		ext := annotation.Extension{
			TU:           tu.Name,
			OldStart:     tu.Start,
			OldEnd:       tu.End,
			Gene:         g.Name,
			GeneRBSStart: g.RBSStart,
			GeneEnd:      g.End,
		}
		tu.Start = min(tu.Start, g.RBSStart)
		tu.End = max(tu.End, g.End)
		ext.NewStart, ext.NewEnd = tu.Start, tu.End
		exts = append(exts, ext)
	}
	return exts
}

// FindOrphans returns the names of genes that no unit declares, once each,
// in gene input order. Only the annotated declarations are consulted, so the
// result does not depend on association.
func FindOrphans(tus []*annotation.TranscriptionUnit, genes []*annotation.Gene) []string {
	declared := make(map[string]bool)
	for _, tu := range tus {
		for _, name := range tu.DeclaredGenes {
			declared[name] = true
		}
	}

	seen := make(map[string]bool)
	var orphans []string
	for _, g := range genes {
		if declared[g.Name] || seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		orphans = append(orphans, g.Name)
	}
	return orphans
}
