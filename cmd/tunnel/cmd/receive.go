package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skelly37/tunnel-go/internal/config"
	"github.com/skelly37/tunnel-go/internal/receiver"
	"github.com/skelly37/tunnel-go/internal/ui"
)

var receiveCmd = &cobra.Command{
	Use:   "receive <session_name>",
	Short: "Receive a file or directory from a session name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadSession(config.Options{
			ServerAddress:  serverAddress,
			ChunkSizeBytes: chunkSizeBytes,
			MaxRAMMB:       maxRAMMB,
		})
		if err != nil {
			return err
		}

		reporter := newReporter("Receiving")
		done := closedChan()
		started := false

		err = receiver.Run(receiver.Options{
			SessionName: args[0],
			Config:      cfg,
			Reporter:    reporter,
			// The accept/decline prompt is itself an interactive bubbletea
			// program; only start the progress UI once it has released the
			// terminal, so the two never contend for the same TTY.
			OnAccepted: func() {
				started = true
				done = runReporter(reporter)
			},
		})
		if started {
			quitReporter(reporter)
		}
		<-done

		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(receiveCmd)
}
