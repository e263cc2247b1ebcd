package annotation

import "fmt"

// Category tags a gene that triggered a correction, warning or rejection
// while loading.
type Category string

const (
	CategoryNoRBS         Category = "no_rbs"
	CategoryInvalidRBS    Category = "invalid_rbs"
	CategoryRBSTooFar     Category = "rbs_too_far"
	CategoryInvalidStart  Category = "invalid_start_codon"
	CategoryInvalidStop   Category = "invalid_stop_codon"
	CategoryInvalidLength Category = "invalid_length"
	CategoryAAMismatch    Category = "aa_sequence_mismatch"
)

// Categories lists the gene categories in report order.
var Categories = []Category{
	CategoryNoRBS,
	CategoryInvalidRBS,
	CategoryRBSTooFar,
	CategoryInvalidStart,
	CategoryInvalidStop,
	CategoryInvalidLength,
	CategoryAAMismatch,
}

// Severity tells whether a category keeps or drops the gene.
type Severity int

const (
	// SeverityWarning genes are corrected or flagged and kept.
	SeverityWarning Severity = iota
	// SeverityRejected genes are excluded from the model.
	SeverityRejected
)

func (s Severity) String() string {
	if s == SeverityRejected {
		return "rejected"
	}
	return "warning"
}

// Severity returns whether genes in c are kept or excluded.
func (c Category) Severity() Severity {
	switch c {
	case CategoryInvalidStop, CategoryInvalidLength, CategoryAAMismatch:
		return SeverityRejected
	default:
		return SeverityWarning
	}
}

// Description is the human-readable heading used in text logs.
func (c Category) Description() string {
	switch c {
	case CategoryNoRBS:
		return fmt.Sprintf("No RBS annotation, RBS placed %d bases upstream of start codon", DefaultRBSOffset)
	case CategoryInvalidRBS:
		return fmt.Sprintf("RBS downstream of start codon, RBS placed %d bases upstream of start codon", DefaultRBSOffset)
	case CategoryRBSTooFar:
		return fmt.Sprintf("RBS more than %d bases upstream of start codon, RBS placed %d bases upstream of start codon", MaxRBSDistance, DefaultRBSOffset)
	case CategoryInvalidStart:
		return "Non-canonical start codon (kept)"
	case CategoryInvalidStop:
		return "Invalid stop codon (excluded)"
	case CategoryInvalidLength:
		return "Length not a multiple of 3 or premature stop codon (excluded)"
	case CategoryAAMismatch:
		return "Amino-acid sequence inconsistent with coding sequence (excluded)"
	default:
		return string(c)
	}
}

// Extension records a transcription unit widened to cover a claimed gene.
type Extension struct {
	TU           string
	OldStart     int64
	OldEnd       int64
	NewStart     int64
	NewEnd       int64
	Gene         string
	GeneRBSStart int64
	GeneEnd      int64
}

func (e Extension) String() string {
	return fmt.Sprintf("%s [%d:%d]: gene %s [%d:%d] is not fully included on TU, extended to [%d:%d]",
		e.TU, e.OldStart, e.OldEnd, e.Gene, e.GeneRBSStart, e.GeneEnd, e.NewStart, e.NewEnd)
}

// Report collects the non-fatal findings of a load.
type Report struct {
	genes      map[Category][]string
	rejected   int
	Orphans    []string
	Extensions []Extension
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{genes: make(map[Category][]string)}
}

// Record adds gene to category c.
func (r *Report) Record(c Category, gene string) {
	r.genes[c] = append(r.genes[c], gene)
}

// Genes returns the genes recorded in c, in input order.
func (r *Report) Genes(c Category) []string {
	return r.genes[c]
}

// Count returns the number of genes recorded in c.
func (r *Report) Count(c Category) int {
	return len(r.genes[c])
}

// Reject counts one candidate gene excluded from the model.
func (r *Report) Reject() {
	r.rejected++
}

// Rejected returns the number of candidate genes excluded from the model.
// A gene failing several checks is counted once.
func (r *Report) Rejected() int {
	return r.rejected
}
