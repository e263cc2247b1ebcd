package annotation

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/genome"
)

// TU table column names not shared with the gene table.
const (
	ColSigma = "sigma"
	ColGenes = "genes"
)

// TUColumns holds the resolved indices of the TU table columns.
type TUColumns struct {
	Name  int
	Start int
	End   int
	Sense int
	Sigma int
	Genes int
}

// TUReader builds transcription units from a TU annotation table.
type TUReader struct {
	table   *table
	columns TUColumns
	seq     *genome.Sequence
	logger  *zap.Logger
}

// NewTUReader reads the table header from r and resolves its columns.
// seq provides the bases counted into each unit's composition.
func NewTUReader(r io.Reader, seq *genome.Sequence) (*TUReader, error) {
	tr := &TUReader{seq: seq, logger: zap.NewNop()}
	c := &tr.columns
	t, err := openTable("TU", r, []column{
		{ColName, &c.Name},
		{ColStart, &c.Start},
		{ColEnd, &c.End},
		{ColSense, &c.Sense},
		{ColSigma, &c.Sigma},
		{ColGenes, &c.Genes},
	})
	if err != nil {
		return nil, err
	}
	tr.table = t
	return tr, nil
}

// SetLogger sets the logger for per-unit diagnostics.
func (tr *TUReader) SetLogger(l *zap.Logger) {
	tr.logger = l
}

// Columns returns the resolved column indices.
func (tr *TUReader) Columns() TUColumns {
	return tr.columns
}

// Next returns the next transcription unit.
// Returns nil, nil when there are no more rows.
func (tr *TUReader) Next() (*TranscriptionUnit, error) {
	fields, err := tr.table.next()
	if err != nil || fields == nil {
		return nil, err
	}

	c := tr.columns
	name := strings.TrimSpace(fields[c.Name])
	start, err := tr.table.parseInt(name, ColStart, fields[c.Start])
	if err != nil {
		return nil, err
	}
	end, err := tr.table.parseInt(name, ColEnd, fields[c.End])
	if err != nil {
		return nil, err
	}
	sense := parseSense(fields[c.Sense])

	if sense != genome.Forward {
		start, end = genome.Invert(start, end, tr.seq.Len())
	}
	if start >= end {
		return nil, tr.table.malformed(name, fmt.Sprintf("start %d is not before end %d", start, end))
	}
	bases, err := tr.seq.Span(start, end, sense)
	if err != nil {
		return nil, tr.table.malformed(name, err.Error())
	}

	tu := &TranscriptionUnit{
		Name:          name,
		Start:         start,
		End:           end,
		Sense:         sense,
		Sigma:         strings.TrimSpace(fields[c.Sigma]),
		Composition:   genome.Composition(bases),
		DeclaredGenes: splitNames(fields[c.Genes]),
	}
	tr.logger.Debug("read transcription unit",
		zap.String("tu", tu.Name),
		zap.Int64("start", tu.Start),
		zap.Int64("end", tu.End),
		zap.Int("declared_genes", len(tu.DeclaredGenes)))
	return tu, nil
}

// ReadAll returns every transcription unit in input order.
func (tr *TUReader) ReadAll() ([]*TranscriptionUnit, error) {
	var tus []*TranscriptionUnit
	for {
		tu, err := tr.Next()
		if err != nil {
			return nil, err
		}
		if tu == nil {
			return tus, nil
		}
		tus = append(tus, tu)
	}
}

// ReadTUs reads all transcription units from a TU table.
func ReadTUs(r io.Reader, seq *genome.Sequence) ([]*TranscriptionUnit, error) {
	tr, err := NewTUReader(r, seq)
	if err != nil {
		return nil, err
	}
	return tr.ReadAll()
}
