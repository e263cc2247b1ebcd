package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/duckdb"
	"github.com/inodb/vibe-operon/internal/metrics"
	"github.com/inodb/vibe-operon/internal/model"
	"github.com/inodb/vibe-operon/internal/output"
	"github.com/inodb/vibe-operon/internal/source"
)

type loadOptions struct {
	outputFile  string
	genesFile   string
	logFile     string
	geneList    string
	sigma       string
	dbPath      string
	metricsFile string
	workers     int
	perGene     bool
	overlaps    bool
	force       bool
	noSummary   bool
}

func newLoadCmd() *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load [flags] <dna> <genes> <tus>",
		Short: "Build the gene and transcription unit model",
		Long: `Load a DNA sequence, a gene table and a transcription unit table, validate
the genes and associate them with their transcription units.

Inputs may be local paths, '-' for stdin or s3://bucket/key URIs, and may be
gzip compressed. The unit table is written to stdout unless --output is set.`,
		Example: `  vibe-operon load dna.txt genes.txt TUs.txt
  vibe-operon load --log log.txt --genes-output genes.tsv dna.txt genes.txt TUs.txt
  vibe-operon load --duckdb model.duckdb --metrics-file load.prom dna.txt genes.txt TUs.txt
  vibe-operon load --gene-list gene_list.txt --sigma SigA dna.txt genes.txt TUs.txt
  vibe-operon load s3://genomes/bsub/dna.txt.gz s3://genomes/bsub/genes.txt s3://genomes/bsub/TUs.txt`,
		Args: usageArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				opts.workers = viper.GetInt("load.workers")
			}
			return runLoad(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], args[1], args[2], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outputFile, "output", "o", "", "Unit table output file (default: stdout)")
	f.StringVar(&opts.genesFile, "genes-output", "", "Write the validated gene table to this file")
	f.StringVar(&opts.logFile, "log", "", "Write the load report log to this file")
	f.StringVar(&opts.geneList, "gene-list", "", "Write each unit with the BSU of its genes to this file")
	f.StringVar(&opts.sigma, "sigma", "", "Only list units with this sigma factor in --gene-list")
	f.StringVar(&opts.dbPath, "duckdb", "", "Store the model in this DuckDB database")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write load metrics in Prometheus text format to this file")
	f.IntVarP(&opts.workers, "workers", "w", 1, "Association workers (0 = all CPUs)")
	f.BoolVar(&opts.perGene, "per-gene", false, "Also build one transcription unit per gene")
	f.BoolVar(&opts.overlaps, "overlaps", false, "Report overlapping transcription units")
	f.BoolVar(&opts.force, "force", false, "Rewrite the DuckDB model even if it is up to date")
	f.BoolVar(&opts.noSummary, "no-summary", false, "Do not print the load summary to stderr")

	return cmd
}

func runLoad(ctx context.Context, stdout, stderr io.Writer, dnaPath, genesPath, tusPath string, opts loadOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zap.L()
	opener := newOpener()

	inputs, closeInputs, err := openInputs(ctx, opener, dnaPath, genesPath, tusPath)
	if err != nil {
		return err
	}
	defer closeInputs()

	m, err := model.Load(inputs, model.Options{
		Workers:       opts.workers,
		PerGeneTUs:    opts.perGene,
		CheckOverlaps: opts.overlaps,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	var out io.Writer = stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	mw := output.NewModelWriter(out)
	if err := mw.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, tu := range m.TUs {
		if err := mw.Write(tu); err != nil {
			return fmt.Errorf("writing unit %s: %w", tu.Name, err)
		}
	}
	for _, tu := range m.GeneTUs {
		if err := mw.Write(tu); err != nil {
			return fmt.Errorf("writing unit %s: %w", tu.Name, err)
		}
	}
	if err := mw.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if opts.genesFile != "" {
		if err := writeFile(opts.genesFile, func(w io.Writer) error {
			gw := output.NewGeneWriter(w)
			if err := gw.WriteHeader(); err != nil {
				return err
			}
			for _, g := range m.Genes {
				if err := gw.Write(g); err != nil {
					return err
				}
			}
			return gw.Flush()
		}); err != nil {
			return fmt.Errorf("writing gene table: %w", err)
		}
	}

	if opts.logFile != "" {
		if err := writeFile(opts.logFile, func(w io.Writer) error {
			return output.WriteLog(w, m.Report, m.Overlaps)
		}); err != nil {
			return fmt.Errorf("writing log: %w", err)
		}
	}

	if opts.geneList != "" {
		if err := writeFile(opts.geneList, func(w io.Writer) error {
			return output.WriteGeneList(w, m.TUs, opts.sigma)
		}); err != nil {
			return fmt.Errorf("writing gene list: %w", err)
		}
	}

	if opts.dbPath != "" {
		if err := storeModel(ctx, logger, m, opts, dnaPath, genesPath, tusPath); err != nil {
			return err
		}
	}

	if opts.metricsFile != "" {
		c := metrics.New()
		c.Observe(m)
		if err := c.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
	}

	if !opts.noSummary {
		if err := output.WriteSummary(stderr, m); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

// newOpener builds an input opener from the s3.* config keys.
func newOpener() *source.Opener {
	return source.NewOpener(source.S3Config{
		Region:    viper.GetString("s3.region"),
		Endpoint:  viper.GetString("s3.endpoint"),
		PathStyle: viper.GetBool("s3.path_style"),
	})
}

// openInputs opens the three model inputs. The returned function closes
// every opened input.
func openInputs(ctx context.Context, opener *source.Opener, dnaPath, genesPath, tusPath string) (model.Inputs, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	paths := []string{dnaPath, genesPath, tusPath}
	stdin := 0
	for _, p := range paths {
		if p == "-" {
			stdin++
		}
	}
	if stdin > 1 {
		return model.Inputs{}, nil, &usageError{fmt.Errorf("only one input can be read from stdin")}
	}

	readers := make([]io.Reader, len(paths))
	for i, p := range paths {
		rc, err := opener.Open(ctx, p)
		if err != nil {
			closeAll()
			return model.Inputs{}, nil, err
		}
		closers = append(closers, rc)
		readers[i] = rc
	}
	return model.Inputs{DNA: readers[0], Genes: readers[1], TUs: readers[2]}, closeAll, nil
}

// storeModel writes m to the DuckDB database unless it already holds a
// model built from the same local inputs and options.
func storeModel(ctx context.Context, logger *zap.Logger, m *model.Model, opts loadOptions, dnaPath, genesPath, tusPath string) error {
	store, err := duckdb.Open(opts.dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sources, local := fingerprintInputs(map[string]string{"dna": dnaPath, "genes": genesPath, "tus": tusPath})
	if local {
		sources = append(sources, optionsFingerprint(opts))
		fresh, err := store.Fresh(sources)
		if err != nil {
			return err
		}
		if fresh && !opts.force {
			logger.Info("model store is up to date", zap.String("path", opts.dbPath))
			return nil
		}
	}

	began := time.Now()
	if err := store.WriteModel(ctx, m, sources); err != nil {
		return fmt.Errorf("writing model store: %w", err)
	}
	logger.Info("wrote model store",
		zap.String("path", opts.dbPath),
		zap.Duration("elapsed", time.Since(began)))
	return nil
}

// fingerprintInputs stats local inputs. local is false when any input is
// stdin or remote, in which case no fingerprints are returned.
func fingerprintInputs(paths map[string]string) (fps []duckdb.SourceFingerprint, local bool) {
	for _, role := range []string{"dna", "genes", "tus"} {
		p := paths[role]
		if p == "-" || strings.HasPrefix(p, "s3://") {
			return nil, false
		}
		fp, err := duckdb.StatFile(p)
		if err != nil {
			return nil, false
		}
		fps = append(fps, duckdb.SourceFingerprint{Role: role, FileFingerprint: fp})
	}
	return fps, true
}

// optionsFingerprint records the load options that change the stored model.
func optionsFingerprint(opts loadOptions) duckdb.SourceFingerprint {
	key := "per_gene=" + strconv.FormatBool(opts.perGene) + ",overlaps=" + strconv.FormatBool(opts.overlaps)
	return duckdb.SourceFingerprint{
		Role:            "options",
		FileFingerprint: duckdb.FileFingerprint{Path: key, ModTime: time.Unix(0, 0)},
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
