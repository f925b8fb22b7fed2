package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/errgroup"

	"github.com/nvogel/ledgerd/internal/ledger"
)

// Processor is the subset of the engine's façade the async pipeline
// needs. Kept as an interface (rather than importing the engine
// package directly) so this package has no dependency on engine, which
// in turn depends on ingest for record parsing.
type Processor interface {
	Process(tx ledger.Transaction) error
}

// OnError receives every transaction that failed to parse or failed
// Process, in arrival order. It is called only from the consumer
// goroutine — parse failures are carried across the channel rather than
// reported from the producer — so a caller relying on this guarantee
// does not need its own locking unless it shares state with the rest
// of the program.
type OnError func(tx ledger.Transaction, err error)

// DefaultChannelCapacity is the async pipeline's default producer/consumer
// buffer size.
const DefaultChannelCapacity = 1024

// item is what the producer sends the consumer: either a successfully
// parsed transaction, or a parse error to report. Carrying parse
// failures across the channel (instead of calling onError directly from
// the producer) keeps every onError call on the consumer goroutine.
type item struct {
	tx       ledger.Transaction
	parseErr error
}

// RunAsync is the asynchronous ingestion pipeline: a producer goroutine
// (run through a panic-safe worker pool, since CSV parsing is pure CPU
// work that must not be allowed to silently kill the process) decodes
// records and sends them on a buffered channel; a consumer goroutine
// drains the channel and calls proc.Process on each one. The two run
// concurrently, so parsing of record N+1 overlaps with applying record N.
//
// Only a failure from the CSV reader itself (I/O, or CSV syntax such as
// a bare quote) aborts the pipeline early; record parse and Process
// failures are reported through onError and otherwise don't interrupt
// the stream.
func RunAsync(ctx context.Context, r io.Reader, proc Processor, chanCapacity int, onError OnError) error {
	if chanCapacity <= 0 {
		chanCapacity = DefaultChannelCapacity
	}

	items := make(chan item, chanCapacity)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(items)
		return produce(ctx, r, items)
	})

	g.Go(func() error {
		consume(ctx, items, proc, onError)
		return nil
	})

	return g.Wait()
}

// produce runs the blocking CSV decode loop on a conc pool worker. A
// panic in that worker is caught by the pool and re-raised from p.Wait
// here, with the worker's stack attached; it is not recovered.
func produce(ctx context.Context, r io.Reader, out chan<- item) error {
	p := pool.New().WithContext(ctx)
	var readErr error

	p.Go(func(ctx context.Context) error {
		br := bufio.NewReaderSize(r, DefaultReadBufferBytes)
		cr := csv.NewReader(br)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true

		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			readErr = errors.Wrap(err, "reading input header")
			return readErr
		}

		for {
			fields, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				readErr = errors.Wrap(err, "reading input record")
				return readErr
			}

			tx, parseErr := ParseRecord(fields)

			select {
			case out <- item{tx: tx, parseErr: parseErr}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := p.Wait(); err != nil {
		return err
	}
	return readErr
}

// DefaultReadBufferBytes mirrors the sync pipeline's default buffered
// reader size.
const DefaultReadBufferBytes = 16 * 1024

func consume(ctx context.Context, items <-chan item, proc Processor, onError OnError) {
	for {
		select {
		case it, ok := <-items:
			if !ok {
				return
			}
			if it.parseErr != nil {
				onError(it.tx, it.parseErr)
				continue
			}
			if err := proc.Process(it.tx); err != nil {
				onError(it.tx, err)
			}
		case <-ctx.Done():
			return
		}
	}
}
