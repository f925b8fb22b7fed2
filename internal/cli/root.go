// Package cli wires the cobra command line to the engine façade: mode
// selection (sync/async), input source (a CSV path or a synthetic
// stress-test stream), and the transaction-log dump flag.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/nvogel/ledgerd/internal/config"
	"github.com/nvogel/ledgerd/internal/engine"
	"github.com/nvogel/ledgerd/internal/ledgererr"
	"github.com/nvogel/ledgerd/internal/logging"
	"github.com/nvogel/ledgerd/internal/stress"
)

const transactionLogDumpFile = "transactions_log.csv"

var (
	configFile string
	dumpLog    bool
)

var rootCmd = &cobra.Command{
	Use:   "ledgerd [async] (<input.csv> | stress-test <N>)",
	Short: "In-memory payments ledger engine",
	Long: `ledgerd ingests a stream of deposit/withdrawal/dispute/resolve/chargeback
records and maintains per-client account state in memory. An optional leading
"async" selects the channel-pipelined ingestion variant; otherwise a single
buffered reader drives ingestion synchronously. The resulting accounts are
always written to stdout as CSV; pass -dump to also write the transaction
log to transactions_log.csv in the current directory.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MinimumNArgs(1),
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.Flags().BoolVar(&dumpLog, "dump", false, "also write the transaction log to transactions_log.csv")
}

// Execute runs the root command. Called once from cmd/ledgerd/main.go.
func Execute() {
	// pflag reads a single-dash "-dump" as a group of shorthand flags, so
	// the documented single-dash spelling is mapped to the long flag.
	args := append([]string(nil), os.Args[1:]...)
	for i, a := range args {
		if a == "-dump" {
			args[i] = "--dump"
		}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ledgerd: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	logger := logging.New(cfg.LogLevel)

	async := false
	if args[0] == "async" {
		async = true
		args = args[1:]
	}
	if len(args) == 0 {
		return errors.New("missing input: expected a CSV path or \"stress-test <N>\"")
	}

	eng := engine.New(engine.Config{ShardCount: cfg.ShardCount})
	ctx := context.Background()

	if args[0] == "stress-test" {
		if len(args) != 2 {
			return errors.New(`"stress-test" requires exactly one argument: the row count`)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "invalid stress-test row count %q", args[1])
		}
		if n < 0 {
			return errors.Newf("invalid stress-test row count %q", args[1])
		}

		var buf bytes.Buffer
		if err := stress.Generate(&buf, n); err != nil {
			return errors.Wrap(err, "generating stress-test input")
		}
		logger.Info().Int("rows", n).Bool("async", async).Msg("ingesting synthetic stress-test stream")
		if async {
			err = eng.ReadAndProcessAsync(ctx, &buf, cfg.ChannelCapacity)
		} else {
			err = eng.ReadAndProcess(&buf, cfg.ReadBufferBytes)
		}
	} else {
		if len(args) != 1 {
			return errors.New("unexpected extra arguments after the input path")
		}
		path := args[0]
		logger.Info().Str("path", path).Bool("async", async).Msg("ingesting input file")
		if async {
			err = eng.ReadAndProcessAsyncFromPath(ctx, path, cfg.ChannelCapacity)
		} else {
			f, openErr := os.Open(path)
			if openErr != nil {
				return errors.Wrap(openErr, "opening input file")
			}
			defer f.Close()
			err = eng.ReadAndProcess(f, cfg.ReadBufferBytes)
		}
	}
	if err != nil {
		return errors.Wrap(err, "ingesting input")
	}

	for _, re := range eng.Errors() {
		semantic := ledgererr.IsSemantic(re.Err)
		fmt.Fprintf(os.Stderr, "%v: %+v (semantic=%t)\n", re.Err, re.Tx, semantic)
	}

	if err := eng.DumpAccounts(os.Stdout); err != nil {
		return errors.Wrap(err, "writing accounts to stdout")
	}

	if dumpLog {
		f, err := os.Create(transactionLogDumpFile)
		if err != nil {
			return errors.Wrap(err, "creating transaction log dump file")
		}
		defer f.Close()
		if err := eng.DumpTransactionLog(f); err != nil {
			return errors.Wrap(err, "writing transaction log dump")
		}
	}

	return nil
}
