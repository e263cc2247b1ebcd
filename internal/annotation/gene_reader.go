package annotation

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/genome"
)

// Gene table column names.
const (
	ColName         = "name"
	ColBSU          = "BSU"
	ColStart        = "start"
	ColEnd          = "end"
	ColRBSStart     = "RBSstart"
	ColRBSEnd       = "RBSend"
	ColSense        = "brin_DNA"
	ColSequence     = "seq"
	ColAASequence   = "aaseq"
	ColTUs          = "TUs"
	ColGeneCategory = "gene_category"
)

// CodingCategory is the gene_category value of rows read as genes.
const CodingCategory = "CDS"

// GeneColumns holds the resolved indices of the gene table columns.
type GeneColumns struct {
	Name         int
	BSU          int
	Start        int
	End          int
	RBSStart     int
	RBSEnd       int
	Sense        int
	Sequence     int
	AASequence   int
	TUs          int
	GeneCategory int
}

// geneRecord is one CDS row with its fields parsed but not yet validated.
type geneRecord struct {
	name       string
	bsu        string
	start      int64
	end        int64
	rbsStart   int64
	rbsEnd     int64
	sense      int8
	sequence   string
	aaSequence string
	tus        []string
}

// GeneReader builds validated genes from a gene annotation table.
type GeneReader struct {
	table     *table
	columns   GeneColumns
	dnaLength int64
	report    *Report
	logger    *zap.Logger
}

// NewGeneReader reads the table header from r and resolves its columns.
// dnaLength is used to renumber reverse strand coordinates; findings are
// recorded into report.
func NewGeneReader(r io.Reader, dnaLength int64, report *Report) (*GeneReader, error) {
	gr := &GeneReader{
		dnaLength: dnaLength,
		report:    report,
		logger:    zap.NewNop(),
	}
	c := &gr.columns
	t, err := openTable("gene", r, []column{
		{ColName, &c.Name},
		{ColBSU, &c.BSU},
		{ColStart, &c.Start},
		{ColEnd, &c.End},
		{ColRBSStart, &c.RBSStart},
		{ColRBSEnd, &c.RBSEnd},
		{ColSense, &c.Sense},
		{ColSequence, &c.Sequence},
		{ColAASequence, &c.AASequence},
		{ColTUs, &c.TUs},
		{ColGeneCategory, &c.GeneCategory},
	})
	if err != nil {
		return nil, err
	}
	gr.table = t
	return gr, nil
}

// SetLogger sets the logger for per-gene diagnostics.
func (gr *GeneReader) SetLogger(l *zap.Logger) {
	gr.logger = l
}

// Columns returns the resolved column indices.
func (gr *GeneReader) Columns() GeneColumns {
	return gr.columns
}

// Next returns the next gene that passes validation.
// Returns nil, nil when there are no more rows.
func (gr *GeneReader) Next() (*Gene, error) {
	for {
		fields, err := gr.table.next()
		if err != nil || fields == nil {
			return nil, err
		}
		if strings.TrimSpace(fields[gr.columns.GeneCategory]) != CodingCategory {
			continue
		}

		rec, err := gr.parseRecord(fields)
		if err != nil {
			return nil, err
		}
		g, err := buildGene(rec, gr.dnaLength, gr.report, gr.logger)
		if err != nil {
			return nil, gr.table.malformed(rec.name, err.Error())
		}
		if g != nil {
			return g, nil
		}
	}
}

// ReadAll returns every valid gene in input order.
func (gr *GeneReader) ReadAll() ([]*Gene, error) {
	var genes []*Gene
	for {
		g, err := gr.Next()
		if err != nil {
			return nil, err
		}
		if g == nil {
			return genes, nil
		}
		genes = append(genes, g)
	}
}

// ReadGenes reads all valid genes from a gene table.
func ReadGenes(r io.Reader, dnaLength int64, report *Report) ([]*Gene, error) {
	gr, err := NewGeneReader(r, dnaLength, report)
	if err != nil {
		return nil, err
	}
	return gr.ReadAll()
}

func (gr *GeneReader) parseRecord(fields []string) (geneRecord, error) {
	c := gr.columns
	rec := geneRecord{
		name:       strings.TrimSpace(fields[c.Name]),
		bsu:        strings.TrimSpace(fields[c.BSU]),
		sense:      parseSense(fields[c.Sense]),
		sequence:   strings.TrimSpace(fields[c.Sequence]),
		aaSequence: strings.TrimSpace(fields[c.AASequence]),
		tus:        splitNames(fields[c.TUs]),
	}

	var err error
	if rec.start, err = gr.table.parseInt(rec.name, ColStart, fields[c.Start]); err != nil {
		return rec, err
	}
	if rec.end, err = gr.table.parseInt(rec.name, ColEnd, fields[c.End]); err != nil {
		return rec, err
	}
	if rec.rbsStart, err = gr.table.parseInt(rec.name, ColRBSStart, fields[c.RBSStart]); err != nil {
		return rec, err
	}
	if rec.rbsEnd, err = gr.table.parseInt(rec.name, ColRBSEnd, fields[c.RBSEnd]); err != nil {
		return rec, err
	}
	return rec, nil
}

// buildGene normalizes and validates one record. It returns nil, nil when the
// gene is rejected and an error when the record is malformed.
func buildGene(rec geneRecord, dnaLength int64, report *Report, logger *zap.Logger) (*Gene, error) {
	start, end := rec.start, rec.end
	if rec.sense != genome.Forward {
		start, end = genome.Invert(start, end, dnaLength)
	}
	if start >= end {
		return nil, fmt.Errorf("start %d is not before end %d", start, end)
	}
	if int64(len(rec.sequence)) != end-start+1 {
		return nil, fmt.Errorf("sequence length %d does not match span [%d:%d]", len(rec.sequence), start, end)
	}

	warn := func(c Category) {
		report.Record(c, rec.name)
		logger.Debug("gene flagged",
			zap.String("gene", rec.name),
			zap.String("category", string(c)),
			zap.String("severity", c.Severity().String()))
	}

	rbsStart := start - DefaultRBSOffset
	if rec.rbsStart == 0 && rec.rbsEnd == 0 {
		warn(CategoryNoRBS)
	} else {
		declared := rec.rbsStart
		if rec.sense != genome.Forward {
			declared, _ = genome.Invert(rec.rbsStart, rec.rbsEnd, dnaLength)
		}
		switch {
		case declared > start:
			warn(CategoryInvalidRBS)
		case declared < start-MaxRBSDistance:
			warn(CategoryRBSTooFar)
		default:
			rbsStart = declared
		}
	}

	seq := rec.sequence
	rejected := false
	if !genome.HasValidStartCodon(seq) {
		warn(CategoryInvalidStart)
	}
	if !genome.HasValidFrame(seq) || genome.HasPrematureStop(seq) {
		warn(CategoryInvalidLength)
		rejected = true
	}
	if !genome.HasValidStopCodon(seq) {
		warn(CategoryInvalidStop)
		rejected = true
	}
	if !genome.AALengthConsistent(seq, rec.aaSequence) {
		warn(CategoryAAMismatch)
		rejected = true
	}
	if rejected {
		report.Reject()
		return nil, nil
	}

	return &Gene{
		Name:          rec.name,
		BSU:           rec.bsu,
		Start:         start,
		End:           end,
		RBSStart:      rbsStart,
		RBSEnd:        start + 2,
		Sense:         rec.sense,
		Sequence:      seq,
		AASequence:    rec.aaSequence,
		AAComposition: genome.AAComposition(rec.aaSequence),
		DeclaredTUs:   rec.tus,
	}, nil
}
