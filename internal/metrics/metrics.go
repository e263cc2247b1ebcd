// Package metrics exports load statistics in the Prometheus text format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inodb/vibe-operon/internal/annotation"
	"github.com/inodb/vibe-operon/internal/model"
)

const namespace = "vibe_operon"

// Collector holds the gauges describing one model load.
type Collector struct {
	registry *prometheus.Registry

	dnaLength  prometheus.Gauge
	genes      prometheus.Gauge
	rejected   prometheus.Gauge
	flagged    *prometheus.GaugeVec
	tus        prometheus.Gauge
	associated prometheus.Gauge
	extensions prometheus.Gauge
	orphans    prometheus.Gauge
	overlaps   prometheus.Gauge
	duration   prometheus.Gauge
}

// New creates a collector registered on its own registry.
func New() *Collector {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	c := &Collector{
		registry:   prometheus.NewRegistry(),
		dnaLength:  gauge("dna_length_bases", "Length of the loaded DNA sequence."),
		genes:      gauge("genes_loaded", "Genes that passed validation."),
		rejected:   gauge("genes_rejected", "Candidate genes excluded from the model."),
		tus:        gauge("transcription_units", "Transcription units loaded."),
		associated: gauge("gene_associations", "Gene to transcription unit links."),
		extensions: gauge("tu_extensions", "Transcription unit widenings during association."),
		orphans:    gauge("orphan_genes", "Genes declared by no transcription unit."),
		overlaps:   gauge("tu_overlaps", "Overlapping transcription unit pairs."),
		duration:   gauge("load_duration_seconds", "Wall time of the model load."),
		flagged: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "genes_flagged",
			Help:      "Genes recorded per report category.",
		}, []string{"category", "severity"}),
	}
	c.registry.MustRegister(c.dnaLength, c.genes, c.rejected, c.flagged, c.tus,
		c.associated, c.extensions, c.orphans, c.overlaps, c.duration)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe sets every gauge from m.
func (c *Collector) Observe(m *model.Model) {
	c.dnaLength.Set(float64(m.Sequence.Len()))
	c.genes.Set(float64(len(m.Genes)))
	c.rejected.Set(float64(m.Report.Rejected()))
	for _, cat := range annotation.Categories {
		c.flagged.WithLabelValues(string(cat), cat.Severity().String()).Set(float64(m.Report.Count(cat)))
	}
	c.tus.Set(float64(len(m.TUs)))
	links := 0
	for _, tu := range m.TUs {
		links += len(tu.Genes)
	}
	c.associated.Set(float64(links))
	c.extensions.Set(float64(len(m.Report.Extensions)))
	c.orphans.Set(float64(len(m.Report.Orphans)))
	c.overlaps.Set(float64(len(m.Overlaps)))
	c.duration.Set(m.Elapsed.Seconds())
}

// WriteTextfile writes the metrics to path for the node exporter textfile
// collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
