// Command traitdex runs the trait co-occurrence indexing pipeline.
//
// With no arguments it reads the default input files under ./data and writes
// all index artifacts under ./public/index. It exits non-zero on any fatal
// input or output error; artifacts already flushed stay on disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pulplabs/traitdex"
	"github.com/pulplabs/traitdex/artifact"
	"github.com/pulplabs/traitdex/blobstore"
	minioblob "github.com/pulplabs/traitdex/blobstore/minio"
	s3blob "github.com/pulplabs/traitdex/blobstore/s3"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "traitdex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		metadataPath = flag.String("metadata", traitdex.DefaultMetadataPath, "collection metadata file")
		ranksPath    = flag.String("ranks", traitdex.DefaultRanksPath, "rank mapping file")
		analysisPath = flag.String("analysis", traitdex.DefaultAnalysisPath, "optional per-item analysis file")
		outputDir    = flag.String("out", traitdex.DefaultOutputDir, "artifact output directory")
		compression  = flag.String("compression", "", "artifact compression: zstd, lz4 or empty")
		verbose      = flag.Bool("v", false, "debug logging")

		publish       = flag.String("publish", "", "publish target: s3://bucket/prefix, minio://host/bucket/prefix or a directory")
		publishRate   = flag.Int("publish-rate", 0, "publish rate limit in bytes/sec (0 = unlimited)")
		minioInsecure = flag.Bool("minio-insecure", false, "use plain HTTP for the minio publish target")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := traitdex.NewTextLogger(level)

	compressor, ok := artifact.CompressorByName(*compression)
	if !ok {
		return fmt.Errorf("unknown compression %q", *compression)
	}

	ctx := context.Background()
	metrics := &traitdex.BasicMetricsCollector{}

	p := traitdex.New(
		traitdex.WithInputPaths(*metadataPath, *ranksPath, *analysisPath),
		traitdex.WithOutputDir(*outputDir),
		traitdex.WithCompressor(compressor),
		traitdex.WithLogger(logger),
		traitdex.WithMetricsCollector(metrics),
	)
	if err := p.Run(ctx); err != nil {
		return err
	}

	stats := metrics.GetStats()
	logger.Info("run completed",
		"items", stats.ItemsLoaded,
		"skipped", stats.ItemsSkipped,
		"artifacts", stats.ArtifactsWritten,
	)

	if *publish == "" {
		return nil
	}

	store, err := storeForTarget(ctx, *publish, *minioInsecure)
	if err != nil {
		return err
	}
	pub := traitdex.NewPublisher(store,
		traitdex.WithPublishLogger(logger),
		traitdex.WithPublishRateLimit(*publishRate),
	)
	return pub.Publish(ctx, *outputDir)
}

// storeForTarget parses the -publish flag. Anything without a scheme is
// treated as a local directory.
func storeForTarget(ctx context.Context, target string, minioInsecure bool) (blobstore.Store, error) {
	switch {
	case strings.HasPrefix(target, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
		return s3blob.NewStoreFromEnv(ctx, bucket, prefix)
	case strings.HasPrefix(target, "minio://"):
		host, rest, _ := strings.Cut(strings.TrimPrefix(target, "minio://"), "/")
		bucket, prefix, _ := strings.Cut(rest, "/")
		client, err := minio.New(host, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: !minioInsecure,
		})
		if err != nil {
			return nil, err
		}
		return minioblob.NewStore(client, bucket, prefix), nil
	default:
		return blobstore.NewLocalStore(target), nil
	}
}
