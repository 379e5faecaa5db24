// Package traitdex implements a batch trait co-occurrence indexing pipeline
// for a fixed-size NFT collection.
//
// One run turns raw per-item attribute records plus a rank mapping into a
// family of read-only index artifacts: an inverted trait index, global and
// in-group pair-rarity statistics, a partner graph, a trait catalog and 256
// hash-sharded family listings. The whole dataset fits in memory; the run is
// deterministic, single-pass and rebuilt from scratch every time.
//
// Quick start:
//
//	p := traitdex.New(
//	    traitdex.WithInputPaths("data/metadata.json", "data/ranks.json", "data/analysis.json"),
//	    traitdex.WithOutputDir("public/index"),
//	    traitdex.WithLogLevel(slog.LevelInfo),
//	)
//	if err := p.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Two missing-data policies run side by side and are never mixed inside one
// artifact: the combo index, pair counts, partner graph and family shards use
// strict exclusion; group analysis and the per-item trait documents fill
// missing categories with the sentinel "None". See the collection package.
package traitdex
