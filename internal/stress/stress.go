// Package stress generates a small synthetic transaction stream for the
// CLI's "stress-test <N>" literal. The real random-transaction
// generator and process-memory harness that exercise this engine at
// scale are external collaborators out of scope here; this is just
// enough synthetic input to drive the same code path a CSV file would.
package stress

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nvogel/ledgerd/internal/ledger"
)

// clientSpread bounds how many distinct clients the generated stream
// touches, so accounts accumulate enough deposits to support later
// withdrawals instead of every row failing InsufficientFunds.
const clientSpread = 64

// Generate writes n synthetic transaction rows (plus header) to w in the
// engine's input CSV grammar. Every fourth row is a withdrawal against
// an account the generator has already deposited into; the rest are
// deposits. Deterministic for a given n, since the module may not use
// time- or randomness-based generation.
func Generate(w io.Writer, n int) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"type", "client", "tx", "amount"}); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		client := ledger.ClientId(i%clientSpread + 1)
		tx := uint32(i + 1)

		var kind string
		amount := "10." + strconv.Itoa(i%100)
		if i%4 == 3 {
			kind = "withdrawal"
			amount = "1.0"
			client = ledger.ClientId((i-1)%clientSpread + 1) // the previous row's deposit client
		} else {
			kind = "deposit"
		}

		row := []string{kind, strconv.FormatUint(uint64(client), 10), strconv.FormatUint(uint64(tx), 10), amount}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return cw.Error()
}
