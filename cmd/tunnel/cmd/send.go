package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skelly37/tunnel-go/internal/config"
	"github.com/skelly37/tunnel-go/internal/sender"
	"github.com/skelly37/tunnel-go/internal/ui"
)

var sendCmd = &cobra.Command{
	Use:   "send <path>...",
	Short: "Send one or more files or directories to a receiver",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadSession(config.Options{
			ServerAddress:  serverAddress,
			ChunkSizeBytes: chunkSizeBytes,
			MaxRAMMB:       maxRAMMB,
		})
		if err != nil {
			return err
		}

		reporter := newReporter("Sending")
		done := runReporter(reporter)

		err = sender.Run(sender.Options{
			Paths:    args,
			Config:   cfg,
			Reporter: reporter,
		})
		quitReporter(reporter)
		<-done

		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
