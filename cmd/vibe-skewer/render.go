package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-skewer/internal/duckdb"
	"github.com/inodb/vibe-skewer/internal/oncokb"
	"github.com/inodb/vibe-skewer/internal/output"
	"github.com/inodb/vibe-skewer/internal/skewer"
	"github.com/inodb/vibe-skewer/internal/transcript"
	"github.com/inodb/vibe-skewer/internal/variant"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [flags] [input-file...]",
		Short: "Lay out variant tracks from MAF, VCF or a DuckDB store",
		Long: `Lay out one track per gene (or one track for --region) and write the placed
discs. Inputs are MAF or VCF files; with --db and no files, records are read
from a store built by "vibe-skewer import".`,
		Example: `  vibe-skewer render data_mutations.txt
  vibe-skewer render --genes KRAS,BRAF --view protein --gtf gencode.gtf.gz input.maf
  vibe-skewer render --region 12:25245000-25250000 -f json input.vcf
  vibe-skewer render --db cohort.duckdb --genes TP53 --mode numeric --value vaf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 && s.DB == "" {
				return fmt.Errorf("input file argument or --%s required", FlagDB)
			}

			logger, err := newLogger(s.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString(FlagOutput); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return runRender(s, args, out, logger)
		},
	}

	fs := cmd.Flags()
	fs.String(FlagDB, "", "Read records from this DuckDB store")
	fs.Float64(FlagWidth, 800, "Track width in pixels")
	fs.Int(FlagWorkers, 0, "Tracks laid out in parallel (0 = number of CPUs)")
	fs.StringP(FlagFormat, "f", "tab", "Output format: tab, json")
	fs.Bool(FlagIndent, false, "Pretty-print JSON output")
	fs.String(FlagInputFormat, "", "Input format: maf, vcf (auto-detected if not specified)")
	fs.String(FlagView, "genomic", "Axis: genomic or protein (protein needs --gtf)")
	fs.String(FlagGTF, "", "GENCODE GTF for gene extents and protein view")
	fs.String(FlagOverrides, "", "Genome Nexus canonical transcript overrides for --gtf")
	fs.StringSlice(FlagGenes, nil, "Only render these genes")
	fs.String(FlagCancerGenes, "", "Only render genes in this OncoKB cancerGeneList.tsv")
	fs.String(FlagRegion, "", "Render one genomic region, e.g. 12:25245000-25250000")
	fs.String(FlagMode, "skewer", "Layout mode: skewer or numeric")
	fs.String(FlagValue, "", "Numeric value: attribute name, or field:key for keyed values")
	fs.String(FlagDomain, "", "Fixed numeric domain min,max (default: from data)")
	fs.StringSlice(FlagNumericColumns, nil, "Extra numeric MAF columns to read")
	fs.StringP(FlagOutput, "o", "", "Output file (default: stdout)")

	return cmd
}

// track is one unit of layout work.
type track struct {
	name    string
	records []variant.Record
	view    skewer.View
	proj    skewer.Projector
}

type layoutWriter interface {
	Write(track string, l *skewer.Layout, records []variant.Record) error
}

// runRender loads records, lays out every track and writes the result.
func runRender(s *Settings, inputs []string, out io.Writer, logger *zap.Logger) error {
	mode := s.layoutMode()

	sets, err := loadRecordSets(s, inputs, logger)
	if err != nil {
		return err
	}
	if s.CancerGenes != "" {
		cgl, err := oncokb.Load(s.CancerGenes)
		if err != nil {
			return err
		}
		sets = keepCancerGenes(sets, cgl)
	}
	if len(sets) == 0 {
		logger.Warn("no records to render")
	}

	tracks, err := buildTracks(s, sets, logger)
	if err != nil {
		return err
	}

	var w layoutWriter
	var flush func() error
	switch s.Format {
	case "json":
		w = output.NewJSONWriter(out, s.Indent)
		flush = func() error { return nil }
	default:
		tw := output.NewTabWriter(out)
		if err := tw.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w, flush = tw, tw.Flush
	}

	jobs := make(chan skewer.TrackJob)
	go func() {
		defer close(jobs)
		for i, t := range tracks {
			jobs <- skewer.TrackJob{
				Seq:       i,
				Name:      t.name,
				Records:   t.records,
				View:      t.view,
				Projector: t.proj,
				Mode:      mode,
			}
		}
	}()

	results := skewer.RenderTracks(jobs, s.Workers, s.Skewer, logger)
	failed := 0
	err = skewer.OrderedCollect(results, func(r skewer.TrackResult) error {
		if r.Err != nil {
			logger.Warn("skipping track", zap.String("track", r.Name), zap.Error(r.Err))
			failed++
			return nil
		}
		return w.Write(r.Name, r.Layout, tracks[r.Seq].records)
	})
	if err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("rendered tracks",
		zap.Int("tracks", len(tracks)-failed),
		zap.Int("failed", failed))
	if failed > 0 && failed == len(tracks) {
		return fmt.Errorf("all %d tracks failed", failed)
	}
	return nil
}

// layoutMode builds the skewer or numeric mode from settings.
func (s *Settings) layoutMode() skewer.Mode {
	if s.Mode != "numeric" {
		return skewer.SkewerMode{}
	}
	m := skewer.NumericMode{Source: parseValueSource(s.Value)}
	if len(s.Domain) == 2 {
		m.Domain = skewer.FixedDomain{Min: s.Domain[0], Max: s.Domain[1]}
	}
	return m
}

// parseValueSource reads "name" as an attribute and "field:key" as a keyed
// value.
func parseValueSource(expr string) skewer.ValueSource {
	if field, key, ok := strings.Cut(expr, ":"); ok {
		return skewer.KeyedValue{Field: field, Key: key}
	}
	return skewer.AttrValue{Name: expr}
}

// region is a 1-based inclusive genomic interval.
type region struct {
	chr        string
	start, end int64
}

func (r region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.chr, r.start, r.end)
}

// parseRegion parses "chr:start-end". Thousands separators are allowed.
func parseRegion(s string) (region, error) {
	chr, span, ok := strings.Cut(strings.ReplaceAll(s, ",", ""), ":")
	if !ok || chr == "" {
		return region{}, fmt.Errorf("invalid region %q (want chr:start-end)", s)
	}
	from, to, ok := strings.Cut(span, "-")
	if !ok {
		return region{}, fmt.Errorf("invalid region %q (want chr:start-end)", s)
	}
	start, err := strconv.ParseInt(from, 10, 64)
	if err != nil {
		return region{}, fmt.Errorf("invalid region start %q: %w", from, err)
	}
	end, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return region{}, fmt.Errorf("invalid region end %q: %w", to, err)
	}
	if start < 1 || end < start {
		return region{}, fmt.Errorf("invalid region %q: need 1 <= start <= end", s)
	}
	return region{chr: chr, start: start, end: end}, nil
}

// recordSet is the records of one track before a projector is chosen.
type recordSet struct {
	name    string
	records []variant.Record
	region  *region
}

// loadRecordSets reads records from files or the store and splits them into
// tracks: one per gene, or a single track for --region. With a GTF, file
// records without a gene take the gene of the transcript covering them.
func loadRecordSets(s *Settings, inputs []string, logger *zap.Logger) ([]recordSet, error) {
	var reg *region
	if s.Region != "" {
		r, err := parseRegion(s.Region)
		if err != nil {
			return nil, err
		}
		reg = &r
	}

	if len(inputs) == 0 {
		return loadStoreSets(s, reg)
	}

	var all []variant.Record
	for _, path := range inputs {
		records, err := readRecords(path, s.InputFormat, s.NumericColumns)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}

	if reg != nil {
		var in []variant.Record
		for _, r := range all {
			if variant.NormalizeChr(r.Chr) == variant.NormalizeChr(reg.chr) && r.Pos >= reg.start && r.Pos <= reg.end {
				in = append(in, r)
			}
		}
		return []recordSet{{name: reg.String(), records: in, region: reg}}, nil
	}

	if s.GTF != "" && slices.ContainsFunc(all, func(r variant.Record) bool { return r.Gene == "" }) {
		ts, err := transcript.LoadGTF(s.GTF, transcript.Filter{})
		if err != nil {
			return nil, err
		}
		n := transcript.NewIndex(ts).AssignGenes(all)
		logger.Info("assigned genes from GTF", zap.Int("records", n))
	}
	return splitByGene(all, s.Genes), nil
}

func loadStoreSets(s *Settings, reg *region) ([]recordSet, error) {
	store, err := duckdb.Open(s.DB)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if reg != nil {
		records, err := store.QueryRecords(reg.chr, reg.start, reg.end)
		if err != nil {
			return nil, err
		}
		return []recordSet{{name: reg.String(), records: records, region: reg}}, nil
	}

	genes := s.Genes
	if len(genes) == 0 {
		if genes, err = store.Genes(); err != nil {
			return nil, err
		}
	}
	sets := make([]recordSet, 0, len(genes))
	for _, g := range genes {
		records, err := store.QueryGene(g)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			sets = append(sets, recordSet{name: g, records: records})
		}
	}
	return sets, nil
}

// splitByGene groups records by gene in first-seen order. If genes is set,
// only those genes are kept, in the given order.
func splitByGene(records []variant.Record, genes []string) []recordSet {
	idx := make(map[string]int)
	var sets []recordSet
	for _, g := range genes {
		idx[g] = len(sets)
		sets = append(sets, recordSet{name: g})
	}
	for _, r := range records {
		name := r.Gene
		if name == "" {
			name = "-"
		}
		i, ok := idx[name]
		if !ok {
			if len(genes) > 0 {
				continue
			}
			i = len(sets)
			idx[name] = i
			sets = append(sets, recordSet{name: name})
		}
		sets[i].records = append(sets[i].records, r)
	}

	out := sets[:0]
	for _, set := range sets {
		if len(set.records) > 0 {
			out = append(out, set)
		}
	}
	return out
}

// keepCancerGenes drops gene tracks not in the list. Region tracks are kept.
func keepCancerGenes(sets []recordSet, cgl oncokb.CancerGeneList) []recordSet {
	out := sets[:0]
	for _, set := range sets {
		if set.region != nil || cgl.IsCancerGene(set.name) {
			out = append(out, set)
		}
	}
	return out
}

// buildTracks chooses a projector and view for every record set.
func buildTracks(s *Settings, sets []recordSet, logger *zap.Logger) ([]track, error) {
	var canonical map[string]*transcript.Transcript
	if s.GTF != "" && (len(sets) == 0 || sets[0].region == nil) {
		var err error
		canonical, err = loadCanonical(s.GTF, s.Overrides, sets)
		if err != nil {
			return nil, err
		}
	}

	tracks := make([]track, 0, len(sets))
	for _, set := range sets {
		t := track{name: set.name, records: set.records}

		switch {
		case set.region != nil:
			if s.View == "protein" {
				return nil, fmt.Errorf("protein view needs genes, not --%s", FlagRegion)
			}
			p := &transcript.LinearProjector{Chr: set.region.chr, Start: set.region.start, End: set.region.end, Width: s.Width}
			t.proj = p
			t.view = skewer.View{Width: s.Width, PixelsPerBase: p.PixelsPerBase()}

		case s.View == "protein":
			tr := canonical[set.name]
			if tr == nil {
				logger.Warn("no coding transcript for gene, skipping track", zap.String("gene", set.name))
				continue
			}
			p, err := transcript.NewCodingProjector(tr, s.Width)
			if err != nil {
				logger.Warn("skipping track", zap.String("gene", set.name), zap.Error(err))
				continue
			}
			t.proj = p
			t.view = skewer.View{Width: s.Width, PixelsPerBase: p.PixelsPerBase(), Coding: p.Coding()}

		default:
			p := genomicProjector(set.records, canonical[set.name], s.Width)
			if p == nil {
				logger.Warn("no positioned records, skipping track", zap.String("gene", set.name))
				continue
			}
			t.proj = p
			t.view = skewer.View{Width: s.Width, PixelsPerBase: p.PixelsPerBase()}
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// genomicProjector spans the transcript when known, otherwise the records on
// the chromosome of the first positioned record, padded by 5% on each side.
func genomicProjector(records []variant.Record, tr *transcript.Transcript, width float64) *transcript.LinearProjector {
	if tr != nil {
		return &transcript.LinearProjector{Chr: tr.Chrom, Start: tr.Start, End: tr.End, Width: width}
	}

	var chr string
	var lo, hi int64
	for i := range records {
		r := &records[i]
		if !r.HasPosition() || r.Chr == "" {
			continue
		}
		if chr == "" {
			chr, lo, hi = r.Chr, r.Pos, r.Pos
			continue
		}
		if variant.NormalizeChr(r.Chr) != variant.NormalizeChr(chr) {
			continue
		}
		lo = min(lo, r.Pos)
		hi = max(hi, r.Pos)
	}
	if chr == "" {
		return nil
	}
	pad := max((hi-lo)/20, 10)
	return &transcript.LinearProjector{Chr: chr, Start: max(lo-pad, 1), End: hi + pad, Width: width}
}

// loadCanonical reads the GTF once and picks the transcript to draw for every
// gene in sets, honoring overrides when a file is given.
func loadCanonical(path, overridesPath string, sets []recordSet) (map[string]*transcript.Transcript, error) {
	var overrides transcript.Overrides
	if overridesPath != "" {
		var err error
		if overrides, err = transcript.LoadOverrides(overridesPath); err != nil {
			return nil, err
		}
	}

	var f transcript.Filter
	if len(sets) == 1 {
		f.Gene = sets[0].name
	}
	ts, err := transcript.LoadGTF(path, f)
	if err != nil {
		return nil, err
	}

	byGene := make(map[string][]*transcript.Transcript)
	for _, t := range ts {
		byGene[t.GeneName] = append(byGene[t.GeneName], t)
	}
	canonical := make(map[string]*transcript.Transcript, len(sets))
	for _, set := range sets {
		if t := overrides.Select(set.name, byGene[set.name]); t != nil {
			canonical[set.name] = t
		}
	}
	return canonical, nil
}
