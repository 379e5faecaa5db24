package traitdex

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulplabs/traitdex/artifact"
	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/family"
	"github.com/pulplabs/traitdex/groups"
	"github.com/pulplabs/traitdex/invindex"
	"github.com/pulplabs/traitdex/pairs"
	"github.com/pulplabs/traitdex/trait"
)

// Artifact file names under the output directory.
const (
	TraitIndexFile   = "trait_index.json"
	PairCountsFile   = "pair_counts.json"
	PartnerIndexFile = "partner_index.json"
	TraitCatalogFile = "trait_catalog.json"
	RarePairingsFile = "rare_pairings.json"
	TraitRangeDir    = "traits"
	FamilyShardDir   = "families"
)

// Pipeline runs the full indexing pass: load, index, pair-count, group
// analysis, family sharding, artifact writes.
type Pipeline struct {
	opts    options
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Pipeline. Without options it reads the default input paths
// and writes to the default output directory.
func New(optFns ...Option) *Pipeline {
	opts := applyOptions(optFns)
	return &Pipeline{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metrics,
	}
}

// Run executes the pipeline. Stages flow strictly downstream; any input read
// failure or artifact write failure aborts the run with a non-nil error.
// Artifacts already flushed stay on disk.
func (p *Pipeline) Run(ctx context.Context) error {
	generatedAt := p.opts.now()

	// Load and merge inputs.
	start := time.Now()
	loader := collection.NewLoader(p.opts.codec)
	coll, err := loader.Load(p.opts.metadataPath, p.opts.ranksPath)
	if err != nil {
		return translateError(fmt.Errorf("%w: %w", ErrInputRead, err))
	}
	prov := &collection.Provenance{}
	if p.opts.analysisPath != "" {
		if prov, err = loader.LoadProvenance(p.opts.analysisPath); err != nil {
			return translateError(fmt.Errorf("%w: %w", ErrInputRead, err))
		}
	}
	p.metrics.RecordItemsLoaded(len(coll.Items))
	p.finishStage(ctx, "load", start, "items", len(coll.Items), "categories", len(coll.Categories))

	strictItems, skipped := coll.Eligible(collection.PolicyStrict)
	for _, id := range skipped {
		p.logger.LogSkippedItem(ctx, id)
		p.metrics.RecordItemSkipped()
	}
	lenientItems, _ := coll.Eligible(collection.PolicyLenient)

	if err := ctx.Err(); err != nil {
		return err
	}

	// Inverted index and trait catalog (strict).
	start = time.Now()
	idx := invindex.Build(strictItems, coll.Categories)
	catalog := idx.Catalog()
	p.finishStage(ctx, "index", start, "traits", len(idx.Keys()))

	// Global pair counts and partner graph (strict).
	start = time.Now()
	strictCounts := pairs.Count(strictItems, coll.Categories)
	filtered := strictCounts.FilterCeiling(p.opts.pairCeiling)
	partnerGraph := pairs.PartnerGraph(filtered)
	p.finishStage(ctx, "pairs", start,
		"pairs", len(strictCounts), "filtered", len(filtered))

	// Group analysis (lenient, with its own global counts).
	start = time.Now()
	lenientCounts := pairs.Count(lenientItems, coll.Categories)
	analysis := groups.Analyze(lenientItems, coll.Categories, lenientCounts, prov, groups.Options{
		MinDrilldownSize: p.opts.minDrilldownSize,
		TopPairs:         p.opts.topPairs,
	})
	p.finishStage(ctx, "groups", start,
		"primary", len(analysis.Primary), "drilldown", len(analysis.Drilldown))

	// Family shards (strict, unfiltered counts).
	start = time.Now()
	families := family.Build(strictItems, coll.Categories, p.opts.familyCap)
	shards := family.GroupByShard(families)
	p.finishStage(ctx, "families", start, "families", len(families))

	if err := ctx.Err(); err != nil {
		return err
	}

	// Write artifacts.
	start = time.Now()
	w := artifact.NewWriter(p.opts.outputDir,
		artifact.WithCodec(p.opts.codec),
		artifact.WithCompressor(p.opts.compressor),
	)
	if err := p.writeCoreArtifacts(ctx, w, generatedAt, coll, idx, catalog, filtered, partnerGraph, analysis); err != nil {
		return translateError(fmt.Errorf("%w: %w", ErrWrite, err))
	}
	if err := p.writeShardedArtifacts(ctx, w, generatedAt, lenientItems, shards); err != nil {
		return translateError(fmt.Errorf("%w: %w", ErrWrite, err))
	}
	p.finishStage(ctx, "write", start)

	// Advisory only: an empty pair list means the group exists but produced
	// no rankable pairs, which the presentation layer renders as a hole.
	p.logger.LogConsistency(ctx, emptyGroups(analysis))

	return nil
}

func (p *Pipeline) finishStage(ctx context.Context, stage string, start time.Time, attrs ...any) {
	duration := time.Since(start)
	p.metrics.RecordStage(stage, duration)
	p.logger.LogStage(ctx, stage, duration, attrs...)
}

func (p *Pipeline) write(ctx context.Context, w *artifact.Writer, name string, doc artifact.OrderedMap) error {
	finalName, err := w.Write(name, doc)
	if err != nil {
		return err
	}
	p.metrics.RecordArtifact()
	p.logger.LogArtifact(ctx, finalName)
	return nil
}

func (p *Pipeline) writeCoreArtifacts(
	ctx context.Context,
	w *artifact.Writer,
	generatedAt time.Time,
	coll *collection.Collection,
	idx *invindex.Index,
	catalog map[string][]invindex.CatalogEntry,
	filtered pairs.Counts,
	partnerGraph map[trait.Key][]pairs.Partner,
	analysis *groups.Result,
) error {
	keys := idx.Keys()

	var index, counts artifact.OrderedMap
	for _, k := range keys {
		index.Set(string(k), idx.Postings(k))
		counts.Set(string(k), idx.Count(k))
	}
	if err := p.write(ctx, w, TraitIndexFile, artifact.NewDocument(generatedAt,
		artifact.KV{Key: "categories", Value: coll.Categories},
		artifact.KV{Key: "index", Value: index},
		artifact.KV{Key: "counts", Value: counts},
	)); err != nil {
		return err
	}

	var pairCounts artifact.OrderedMap
	for _, pk := range filtered.Keys() {
		pairCounts.Set(string(pk), filtered[pk])
	}
	if err := p.write(ctx, w, PairCountsFile, artifact.NewDocument(generatedAt,
		artifact.KV{Key: "ceiling", Value: p.opts.pairCeiling},
		artifact.KV{Key: "pairs", Value: pairCounts},
	)); err != nil {
		return err
	}

	var partners artifact.OrderedMap
	for _, k := range keys {
		if edges, ok := partnerGraph[k]; ok {
			partners.Set(string(k), edges)
		}
	}
	if err := p.write(ctx, w, PartnerIndexFile, artifact.NewDocument(generatedAt,
		artifact.KV{Key: "partners", Value: partners},
	)); err != nil {
		return err
	}

	var catalogDoc artifact.OrderedMap
	for _, category := range coll.Categories {
		catalogDoc.Set(category, catalog[category])
	}
	if err := p.write(ctx, w, TraitCatalogFile, artifact.NewDocument(generatedAt,
		artifact.KV{Key: "categories", Value: catalogDoc},
	)); err != nil {
		return err
	}

	var primary, drilldown artifact.OrderedMap
	for _, g := range analysis.Primary {
		primary.Set(g.Name, g)
	}
	for _, g := range analysis.Drilldown {
		drilldown.Set(g.Name, g)
	}
	return p.write(ctx, w, RarePairingsFile, artifact.NewDocument(generatedAt,
		artifact.KV{Key: "primary", Value: primary},
		artifact.KV{Key: "drilldown", Value: drilldown},
	))
}

// writeShardedArtifacts writes the 256 family shards and the per-id-range
// trait documents. These documents share no state once computed, so the
// writes fan out over a bounded errgroup.
func (p *Pipeline) writeShardedArtifacts(
	ctx context.Context,
	w *artifact.Writer,
	generatedAt time.Time,
	lenientItems []*collection.Item,
	shards [family.ShardCount][]family.Entry,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.parallelism)

	for shardID := 0; shardID < family.ShardCount; shardID++ {
		entries := shards[shardID]
		name := fmt.Sprintf("%s/%s.json", FamilyShardDir, family.ShardName(uint8(shardID)))
		g.Go(func() error {
			var fams artifact.OrderedMap
			for _, e := range entries {
				fams.Set(string(e.Pair), e.Family)
			}
			return p.write(gctx, w, name, artifact.NewDocument(generatedAt,
				artifact.KV{Key: "families", Value: fams},
			))
		})
	}

	for _, rng := range partitionByRange(lenientItems, p.opts.rangeSize) {
		rng := rng
		name := fmt.Sprintf("%s/traits_%04d_%04d.json", TraitRangeDir, rng.lo, rng.hi)
		g.Go(func() error {
			var items artifact.OrderedMap
			for _, it := range rng.items {
				items.Set(strconv.Itoa(it.ID), itemTraitDoc(it))
			}
			return p.write(gctx, w, name, artifact.NewDocument(generatedAt,
				artifact.KV{Key: "from", Value: rng.lo},
				artifact.KV{Key: "to", Value: rng.hi},
				artifact.KV{Key: "items", Value: items},
			))
		})
	}

	return g.Wait()
}

type idRange struct {
	lo, hi int
	items  []*collection.Item
}

// partitionByRange buckets items into fixed-size id ranges (1..size,
// size+1..2*size, ...). Empty ranges produce no document.
func partitionByRange(items []*collection.Item, size int) []idRange {
	buckets := make(map[int][]*collection.Item)
	for _, it := range items {
		buckets[(it.ID-1)/size] = append(buckets[(it.ID-1)/size], it)
	}
	ranges := make([]idRange, 0, len(buckets))
	for b, members := range buckets {
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		ranges = append(ranges, idRange{
			lo:    b*size + 1,
			hi:    (b + 1) * size,
			items: members,
		})
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].lo < ranges[j].lo })
	return ranges
}

func itemTraitDoc(it *collection.Item) artifact.OrderedMap {
	categories := make([]string, 0, len(it.Traits))
	for c := range it.Traits {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var traits artifact.OrderedMap
	for _, c := range categories {
		tv := it.Traits[c]
		traits.Set(c, artifact.OrderedMap{
			{Key: "value", Value: tv.Normalized},
			{Key: "original", Value: tv.Raw},
		})
	}

	doc := artifact.OrderedMap{
		{Key: "rank", Value: it.Rank},
		{Key: "traits", Value: traits},
	}
	if it.Image != "" {
		doc = append(artifact.OrderedMap{{Key: "image", Value: it.Image}}, doc...)
	}
	return doc
}

func emptyGroups(analysis *groups.Result) []string {
	var names []string
	for _, g := range analysis.Primary {
		if len(g.Entries) == 0 {
			names = append(names, g.Name)
		}
	}
	for _, g := range analysis.Drilldown {
		if len(g.Entries) == 0 {
			names = append(names, g.Name)
		}
	}
	return names
}
