package traitdex

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pulplabs/traitdex/blobstore"
)

// Publisher copies finished artifacts from the output directory to a blob
// store. Publishing is strictly post-run: the pipeline never performs network
// I/O while processing.
type Publisher struct {
	store       blobstore.Store
	limiter     *rate.Limiter
	parallelism int
	logger      *Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublishRateLimit caps upload throughput in bytes per second.
// Values <= 0 leave uploads unlimited.
func WithPublishRateLimit(bytesPerSec int) PublisherOption {
	return func(p *Publisher) {
		if bytesPerSec > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
		}
	}
}

// WithPublishParallelism bounds concurrent uploads. Values <= 0 keep the
// default of 4.
func WithPublishParallelism(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// WithPublishLogger configures structured logging for uploads.
func WithPublishLogger(logger *Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher creates a Publisher targeting the given store.
func NewPublisher(store blobstore.Store, optFns ...PublisherOption) *Publisher {
	p := &Publisher{
		store:       store,
		parallelism: 4,
		logger:      NoopLogger(),
	}
	for _, fn := range optFns {
		fn(p)
	}
	return p
}

// Publish uploads every regular file under dir, keyed by its slash-separated
// path relative to dir. The first failed upload cancels the rest.
func (p *Publisher) Publish(ctx context.Context, dir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		g.Go(func() error {
			return p.publishFile(gctx, path, name)
		})
		return nil
	})
	if err != nil {
		g.Wait()
		return err
	}
	return g.Wait()
}

func (p *Publisher) publishFile(ctx context.Context, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if p.limiter != nil {
		if err := waitBytes(ctx, p.limiter, int(info.Size())); err != nil {
			return err
		}
	}

	err = p.store.Put(ctx, name, f, info.Size())
	p.logger.LogPublish(ctx, name, info.Size(), err)
	return err
}

// waitBytes reserves n bytes from the limiter, in burst-sized chunks so a
// single large shard cannot exceed the limiter's burst.
func waitBytes(ctx context.Context, l *rate.Limiter, n int) error {
	burst := l.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := l.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
