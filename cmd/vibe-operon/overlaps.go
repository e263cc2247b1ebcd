package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/association"
	"github.com/inodb/vibe-operon/internal/genome"
	"github.com/inodb/vibe-operon/internal/model"
)

func newOverlapsCmd() *cobra.Command {
	var genesPath string

	cmd := &cobra.Command{
		Use:   "overlaps [flags] <dna> <tus>",
		Short: "List overlapping transcription units",
		Long: `List pairs of same-strand transcription units that share bases but end at
different positions. Units are checked with their annotated bounds, or with
the bounds widened by gene association when --genes is given.`,
		Example: `  vibe-operon overlaps dna.txt TUs.txt
  vibe-operon overlaps --genes genes.txt dna.txt TUs.txt`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlaps(cmd.Context(), cmd.OutOrStdout(), args[0], genesPath, args[1])
		},
	}
	cmd.Flags().StringVar(&genesPath, "genes", "", "Gene table; associate genes before checking")
	return cmd
}

func runOverlaps(ctx context.Context, stdout io.Writer, dnaPath, genesPath, tusPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := zap.L()
	opener := newOpener()

	var overlaps []association.Overlap
	if genesPath != "" {
		inputs, closeInputs, err := openInputs(ctx, opener, dnaPath, genesPath, tusPath)
		if err != nil {
			return err
		}
		defer closeInputs()
		m, err := model.Load(inputs, model.Options{CheckOverlaps: true, Logger: logger})
		if err != nil {
			return err
		}
		overlaps = m.Overlaps
	} else {
		dna, err := opener.Open(ctx, dnaPath)
		if err != nil {
			return err
		}
		defer dna.Close()
		seq, err := genome.Parse(dna)
		if err != nil {
			return fmt.Errorf("load DNA: %w", err)
		}

		tuFile, err := opener.Open(ctx, tusPath)
		if err != nil {
			return err
		}
		defer tuFile.Close()
		reader, err := annotation.NewTUReader(tuFile, seq)
		if err != nil {
			return fmt.Errorf("load transcription units: %w", err)
		}
		reader.SetLogger(logger)
		tus, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("load transcription units: %w", err)
		}
		overlaps = association.FindOverlaps(tus)
	}

	for _, o := range overlaps {
		if _, err := fmt.Fprintln(stdout, o.String()); err != nil {
			return err
		}
	}
	logger.Info("overlap check done", zap.Int("pairs", len(overlaps)))
	return nil
}
