package engine

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/nvogel/ledgerd/internal/ingest"
)

// DefaultReadBufferBytes is the sync pipeline's default buffered-reader
// size.
const DefaultReadBufferBytes = 16 * 1024

// ReadAndProcess is the synchronous ingestion pipeline: a single
// buffered CSV reader decodes one record at a time and immediately
// calls Process on it. Parse failures and semantic failures are both
// recorded into the session's error aggregate (retrievable via Errors)
// rather than returned, so that one bad row never stops the rest of
// the stream; only a failure from the CSV reader itself (I/O, or CSV
// syntax such as a bare quote) is returned.
func (e *Engine) ReadAndProcess(r io.Reader, bufSize int) error {
	if bufSize <= 0 {
		bufSize = DefaultReadBufferBytes
	}
	br := bufio.NewReaderSize(r, bufSize)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "reading input header")
	}

	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading input record")
		}

		tx, err := ingest.ParseRecord(fields)
		if err != nil {
			e.recordError(tx, err)
			continue
		}
		if err := e.Process(tx); err != nil {
			e.recordError(tx, err)
		}
	}
}

// ReadAndProcessFromPath opens path and runs ReadAndProcess over its
// contents with the default read buffer size.
func (e *Engine) ReadAndProcessFromPath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening input file")
	}
	defer f.Close()
	return e.ReadAndProcess(f, DefaultReadBufferBytes)
}
