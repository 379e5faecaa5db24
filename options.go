package traitdex

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/pulplabs/traitdex/artifact"
	"github.com/pulplabs/traitdex/codec"
	"github.com/pulplabs/traitdex/family"
	"github.com/pulplabs/traitdex/groups"
	"github.com/pulplabs/traitdex/pairs"
)

// Default input/output locations; the CLI runs against these with no
// arguments.
const (
	DefaultMetadataPath = "data/metadata.json"
	DefaultRanksPath    = "data/ranks.json"
	DefaultAnalysisPath = "data/analysis.json"
	DefaultOutputDir    = "public/index"
)

// DefaultRangeSize is the id span of one per-item trait document.
const DefaultRangeSize = 100

type options struct {
	metadataPath string
	ranksPath    string
	analysisPath string
	outputDir    string

	codec       codec.Codec
	compressor  artifact.Compressor
	logger      *Logger
	metrics     MetricsCollector
	parallelism int

	pairCeiling      int
	minDrilldownSize int
	topPairs         int
	familyCap        int
	rangeSize        int

	now func() time.Time
}

// Option configures a Pipeline.
type Option func(*options)

// WithInputPaths sets the metadata, rank-mapping and analysis file paths.
// An empty analysisPath disables the provenance-bonus lookup.
func WithInputPaths(metadataPath, ranksPath, analysisPath string) Option {
	return func(o *options) {
		o.metadataPath = metadataPath
		o.ranksPath = ranksPath
		o.analysisPath = analysisPath
	}
}

// WithOutputDir sets the artifact output directory.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

// WithCodec configures the codec used for input decoding and artifact
// encoding. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressor configures optional artifact compression.
// Pass nil to write plain JSON.
func WithCompressor(c artifact.Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// WithParallelism bounds the goroutines used for family-shard and trait
// document writes. Values <= 0 select GOMAXPROCS. Only writes fan out; the
// analysis stages run serially, the data volume does not warrant more.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithPairCeiling sets the global-count ceiling applied before the partner
// graph. Values <= 0 select pairs.DefaultCeiling.
func WithPairCeiling(ceiling int) Option {
	return func(o *options) {
		o.pairCeiling = ceiling
	}
}

// WithGroupThresholds sets the minimum drilldown membership and the top-N
// entry truncation for group analysis. Values <= 0 select the defaults.
func WithGroupThresholds(minDrilldownSize, topPairs int) Option {
	return func(o *options) {
		o.minDrilldownSize = minDrilldownSize
		o.topPairs = topPairs
	}
}

// WithFamilyCap sets the family truncation cap. Values <= 0 select
// family.DefaultCap.
func WithFamilyCap(cap int) Option {
	return func(o *options) {
		o.familyCap = cap
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// withNow fixes the generation timestamp; used by tests for byte-identical
// artifacts.
func withNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metadataPath:     DefaultMetadataPath,
		ranksPath:        DefaultRanksPath,
		analysisPath:     DefaultAnalysisPath,
		outputDir:        DefaultOutputDir,
		codec:            codec.Default,
		logger:           NoopLogger(),
		metrics:          NoopMetricsCollector{},
		parallelism:      runtime.GOMAXPROCS(0),
		pairCeiling:      pairs.DefaultCeiling,
		minDrilldownSize: groups.DefaultMinDrilldownSize,
		topPairs:         groups.DefaultTopPairs,
		familyCap:        family.DefaultCap,
		rangeSize:        DefaultRangeSize,
		now:              time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
