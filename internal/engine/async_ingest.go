package engine

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/nvogel/ledgerd/internal/ingest"
)

// ReadAndProcessAsync is the asynchronous ingestion pipeline: CSV
// decoding runs on a producer goroutine while this Engine's Process
// runs on a consumer goroutine, connected by a buffered channel, so
// parsing overlaps with ledger mutation. See internal/ingest.RunAsync
// for the mechanics.
func (e *Engine) ReadAndProcessAsync(ctx context.Context, r io.Reader, chanCapacity int) error {
	return ingest.RunAsync(ctx, r, e, chanCapacity, e.recordError)
}

// ReadAndProcessAsyncFromPath opens path and runs ReadAndProcessAsync
// over its contents with the given channel capacity.
func (e *Engine) ReadAndProcessAsyncFromPath(ctx context.Context, path string, chanCapacity int) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening input file")
	}
	defer f.Close()
	return e.ReadAndProcessAsync(ctx, f, chanCapacity)
}
