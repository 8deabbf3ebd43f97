package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sashaperigo/mkmimo/internal/ioloop"
)

// watchDiagnosticSignal prints loop.Snapshot() plus recent cycle history to
// stderr every time the process receives SIGUSR1. It never touches loop
// state beyond reading the published Snapshot, so it runs safely alongside
// the single-threaded loop driver on its own goroutine.
func watchDiagnosticSignal(ctx context.Context, cmd *cobra.Command, loop *ioloop.Loop, colorWanted bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	stderr := cmd.ErrOrStderr()
	colorEnabled := colorWanted
	if f, ok := stderr.(*os.File); ok {
		colorEnabled = colorEnabled && term.IsTerminal(int(f.Fd()))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			snap := loop.Snapshot()
			recent := loop.RecentHistory()
			ioloop.DumpState(stderr, snap, recent, colorEnabled)
		}
	}
}
