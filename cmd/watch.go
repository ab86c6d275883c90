package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"keysim/internal/network"
	"keysim/internal/protocol"
	"keysim/internal/simulator"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var (
		addr     string
		token    string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream countdown, status and progress from a running keysim",
		Long: `Stream countdown, status and progress from a run started with
'keysim run --listen'. Exits when the run reaches a final state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := &lockedWriter{w: cmd.OutOrStdout()}
			client := network.NewWSClient(addr, token, g.component("watch"))

			finished := make(chan simulator.State, 1)
			var once sync.Once
			client.OnStatus = func(status protocol.StatusPayload) {
				out.Printf("Status: %s (%d/%d)\n", status.State, status.Done, status.Total)
				if st, ok := simulator.ParseState(status.State); ok && st.Terminal() {
					once.Do(func() { finished <- st })
				}
			}
			client.OnCountdown = func(remaining int) {
				out.Printf("Starting in %d...\n", remaining)
			}
			if progress {
				client.OnProgress = func(done, total int) {
					out.Printf("Progress: %d/%d\n", done, total)
				}
			}
			client.OnError = func(message string) {
				out.Printf("Server error: %s\n", message)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client.Start()
			defer client.Close()

			select {
			case st := <-finished:
				if st == simulator.StateError {
					return fmt.Errorf("run ended with status %s", st)
				}
			case <-ctx.Done():
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultControlAddr, "control server address")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().BoolVar(&progress, "progress", false, "print every progress update")
	return cmd
}
