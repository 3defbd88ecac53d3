// Command tunnel is the CLI front-end for sending and receiving files
// over a direct WebRTC data channel.
package main

import (
	"os"

	"github.com/skelly37/tunnel-go/cmd/tunnel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
