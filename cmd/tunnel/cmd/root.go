// Package cmd defines the tunnel CLI: the send and receive subcommands
// and the flags/config plumbing they share.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skelly37/tunnel-go/internal/logging"
)

var (
	serverAddress  string
	chunkSizeBytes int
	maxRAMMB       int
	plainOutput    bool
)

var rootCmd = &cobra.Command{
	Use:           "tunnel",
	Short:         "Direct peer-to-peer file transfer over WebRTC",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

// Execute runs the CLI. If the selected subcommand fails, cobra.CheckErr
// prints the error to stderr and exits the process with status 1, so in
// practice Execute only returns nil.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		cobra.CheckErr(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "signalling server address, e.g. ws://host:25565/ws (env SERVER_ADDRESS)")
	rootCmd.PersistentFlags().IntVar(&chunkSizeBytes, "chunk-size", 0, "chunk size in bytes (env CHUNK_SIZE_BYTES)")
	rootCmd.PersistentFlags().IntVar(&maxRAMMB, "max-ram", 0, "max resident reassembly memory in MB, receiver only (env MAX_RAM_MB)")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "disable the terminal progress UI")
}
