// Package model loads a genome with its gene and transcription unit
// annotations into an associated, validated model.
package model

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/association"
	"github.com/inodb/vibe-operon/internal/genome"
)

// Model is a loaded genome with its associated annotations.
type Model struct {
	Sequence *genome.Sequence
	Genes    []*annotation.Gene
	TUs      []*annotation.TranscriptionUnit
	Report   *annotation.Report

	// GeneTUs holds one unit per gene when per-gene units were requested.
	GeneTUs []*annotation.TranscriptionUnit
	// Overlaps is filled when the overlap diagnostic was requested.
	Overlaps []association.Overlap

	Elapsed time.Duration
}

// Orphans returns the names of genes no transcription unit declares.
func (m *Model) Orphans() []string {
	return m.Report.Orphans
}

// Options controls how a model is loaded.
type Options struct {
	Workers       int  // association workers; 1 is sequential, <1 uses all CPUs
	PerGeneTUs    bool // also build one unit per gene
	CheckOverlaps bool // run the overlap diagnostic
	Logger        *zap.Logger
}

// Inputs are the three readers a model is built from.
type Inputs struct {
	DNA   io.Reader
	Genes io.Reader
	TUs   io.Reader
}

// Load parses the inputs and associates genes with transcription units.
// Any fatal input error aborts the load and no model is returned.
func Load(in Inputs, opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	began := time.Now()

	seq, err := genome.Parse(in.DNA)
	if err != nil {
		return nil, fmt.Errorf("load DNA: %w", err)
	}
	logger.Info("loaded DNA", zap.Int64("length", seq.Len()))

	report := annotation.NewReport()
	gr, err := annotation.NewGeneReader(in.Genes, seq.Len(), report)
	if err != nil {
		return nil, fmt.Errorf("load genes: %w", err)
	}
	gr.SetLogger(logger)
	genes, err := gr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load genes: %w", err)
	}
	logger.Info("loaded genes",
		zap.Int("valid", len(genes)),
		zap.Int("rejected", report.Rejected()))

	tr, err := annotation.NewTUReader(in.TUs, seq)
	if err != nil {
		return nil, fmt.Errorf("load transcription units: %w", err)
	}
	tr.SetLogger(logger)
	tus, err := tr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load transcription units: %w", err)
	}
	logger.Info("loaded transcription units", zap.Int("count", len(tus)))

	engine := association.NewEngine()
	engine.SetWorkers(opts.Workers)
	engine.SetLogger(logger)
	engine.Associate(tus, genes).Apply(report)
	logger.Info("associated genes",
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("extensions", len(report.Extensions)))

	m := &Model{
		Sequence: seq,
		Genes:    genes,
		TUs:      tus,
		Report:   report,
	}

	if opts.PerGeneTUs {
		m.GeneTUs, err = association.GeneTUs(seq, genes)
		if err != nil {
			return nil, fmt.Errorf("build per-gene units: %w", err)
		}
	}
	if opts.CheckOverlaps {
		m.Overlaps = association.FindOverlaps(tus)
		for _, o := range m.Overlaps {
			logger.Warn("overlapping transcription units",
				zap.String("first", o.First),
				zap.String("second", o.Second))
		}
	}

	m.Elapsed = time.Since(began)
	return m, nil
}
