package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/model"
)

// WriteModel replaces the stored model with m using the Appender API.
// sources are the fingerprints of the input files m was loaded from.
func (s *Store) WriteModel(ctx context.Context, m *model.Model, sources []SourceFingerprint) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	for _, table := range modelTables {
		if _, err := conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := appendRows(conn, "genes", geneRows(m.Genes)); err != nil {
		return err
	}
	units, links := tuRows(m.TUs, m.GeneTUs)
	if err := appendRows(conn, "transcription_units", units); err != nil {
		return err
	}
	if err := appendRows(conn, "tu_genes", links); err != nil {
		return err
	}
	if err := appendRows(conn, "report_entries", reportRows(m.Report)); err != nil {
		return err
	}
	if err := appendRows(conn, "tu_extensions", extensionRows(m.Report.Extensions)); err != nil {
		return err
	}
	orphans := make([][]driver.Value, len(m.Report.Orphans))
	for i, name := range m.Report.Orphans {
		orphans[i] = []driver.Value{int64(i), name}
	}
	if err := appendRows(conn, "orphan_genes", orphans); err != nil {
		return err
	}
	overlaps := make([][]driver.Value, len(m.Overlaps))
	for i, o := range m.Overlaps {
		overlaps[i] = []driver.Value{int64(i), o.First, o.Second, o.Sense}
	}
	if err := appendRows(conn, "tu_overlaps", overlaps); err != nil {
		return err
	}
	sourceRows := make([][]driver.Value, len(sources))
	for i, fp := range sources {
		sourceRows[i] = []driver.Value{fp.Role, fp.Path, fp.Size, fp.ModTime.UTC()}
	}
	return appendRows(conn, "load_sources", sourceRows)
}

// appendRows batch-inserts rows into table through a DuckDB appender.
func appendRows(conn *sql.Conn, table string, rows [][]driver.Value) error {
	if len(rows) == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	for _, row := range rows {
		if err := appender.AppendRow(row...); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}
	return appender.Flush()
}

func geneRows(genes []*annotation.Gene) [][]driver.Value {
	rows := make([][]driver.Value, len(genes))
	for i, g := range genes {
		comp := make([]string, len(g.AAComposition))
		for k, n := range g.AAComposition {
			comp[k] = strconv.Itoa(n)
		}
		rows[i] = []driver.Value{
			int64(i), g.Name, g.BSU, g.Start, g.End, g.RBSStart, g.RBSEnd, g.Sense,
			g.Sequence, g.AASequence, strings.Join(comp, ","), strings.Join(g.DeclaredTUs, ","),
		}
	}
	return rows
}

func tuRows(tus, geneTUs []*annotation.TranscriptionUnit) (units, links [][]driver.Value) {
	add := func(tu *annotation.TranscriptionUnit, perGene bool) {
		ordinal := int64(len(units))
		units = append(units, []driver.Value{
			ordinal, tu.Name, tu.Start, tu.End, tu.Sense, tu.Sigma,
			int64(tu.Composition[0]), int64(tu.Composition[1]),
			int64(tu.Composition[2]), int64(tu.Composition[3]),
			strings.Join(tu.DeclaredGenes, ","), perGene,
		})
		for pos, g := range tu.Genes {
			links = append(links, []driver.Value{ordinal, tu.Name, g.Name, int64(pos), perGene})
		}
	}
	for _, tu := range tus {
		add(tu, false)
	}
	for _, tu := range geneTUs {
		add(tu, true)
	}
	return units, links
}

func reportRows(report *annotation.Report) [][]driver.Value {
	var rows [][]driver.Value
	for _, c := range annotation.Categories {
		for _, name := range report.Genes(c) {
			rows = append(rows, []driver.Value{int64(len(rows)), string(c), c.Severity().String(), name})
		}
	}
	return rows
}

func extensionRows(exts []annotation.Extension) [][]driver.Value {
	rows := make([][]driver.Value, len(exts))
	for i, e := range exts {
		rows[i] = []driver.Value{int64(i), e.TU, e.Gene, e.OldStart, e.OldEnd, e.NewStart, e.NewEnd}
	}
	return rows
}

// StoredUnit is a transcription unit row read back from the store.
type StoredUnit struct {
	Name    string
	Start   int64
	End     int64
	Sense   int8
	Sigma   string
	PerGene bool
}

// Units returns the stored transcription units in load order, declared
// units first.
func (s *Store) Units() ([]StoredUnit, error) {
	rows, err := s.db.Query(`SELECT name, start, "end", sense, sigma, per_gene
		FROM transcription_units ORDER BY ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []StoredUnit
	for rows.Next() {
		var u StoredUnit
		if err := rows.Scan(&u.Name, &u.Start, &u.End, &u.Sense, &u.Sigma, &u.PerGene); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return units, nil
}

// UnitGenes returns the genes associated with the declared unit named tu,
// in association order.
func (s *Store) UnitGenes(tu string) ([]string, error) {
	return s.queryNames(`SELECT gene_name FROM tu_genes
		WHERE tu_name=? AND NOT per_gene ORDER BY tu_ordinal, position`, tu)
}

// GeneUnits returns the declared units that claimed gene, in load order.
func (s *Store) GeneUnits(gene string) ([]string, error) {
	return s.queryNames(`SELECT tu_name FROM tu_genes
		WHERE gene_name=? AND NOT per_gene ORDER BY tu_ordinal`, gene)
}

// ReportGenes returns the genes recorded under category c.
func (s *Store) ReportGenes(c annotation.Category) ([]string, error) {
	return s.queryNames(`SELECT gene_name FROM report_entries
		WHERE category=? ORDER BY ordinal`, string(c))
}

// Orphans returns the stored orphan gene names.
func (s *Store) Orphans() ([]string, error) {
	return s.queryNames(`SELECT gene_name FROM orphan_genes ORDER BY ordinal`)
}

func (s *Store) queryNames(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Count returns the number of rows in one of the model tables.
func (s *Store) Count(table string) (int64, error) {
	known := false
	for _, t := range modelTables {
		known = known || t == table
	}
	if !known {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int64
	if err := s.db.QueryRow("SELECT count(*) FROM " + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
