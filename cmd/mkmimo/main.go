// Command mkmimo multiplexes and demultiplexes record-oriented byte
// streams: it reads from N inputs and fans their records out to M outputs,
// round-robin, without splitting, duplicating, or dropping a record.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "mkmimo [flags] IN... -- OUT...",
	Short: "Multiplex and demultiplex record-oriented byte streams",
	Long: `mkmimo fans records (newline-terminated byte sequences) in from one or
more inputs and out to one or more outputs, round-robin, using a single
nonblocking event loop. No record is ever split across a read/write boundary,
duplicated, or silently dropped under normal operation.

Name input and output paths positionally, separated by a literal "--":

  mkmimo in1.fifo in2.fifo -- out1.fifo out2.fifo

Use "-" for stdin or stdout. Alternatively, describe every endpoint in a
YAML manifest with --manifest and omit the positional arguments entirely.

Send SIGUSR1 to a running mkmimo process to print a snapshot of every
endpoint's state to stderr.`,
	Version:      formatVersion(version, commit),
	SilenceUsage: true,
	RunE:         runMkmimo,
}

func formatVersion(ver, commit string) string {
	if ver == "dev" {
		return fmt.Sprintf("dev (%s)", commit)
	}
	return fmt.Sprintf("%s (%s)", ver, commit)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "mkmimo: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolP("verbose", "v", false, "shorthand for --log-level debug")
	rootCmd.Flags().String("manifest", "", "path to a YAML manifest describing endpoints, instead of positional arguments")
}
