package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sashaperigo/mkmimo/internal/groutine"
	"github.com/sashaperigo/mkmimo/internal/ioloop"
	"github.com/sashaperigo/mkmimo/pkg/config"
)

func runMkmimo(cmd *cobra.Command, args []string) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	endpoints, err := resolveEndpoints(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.Load(logger)
	ioCfg := cfg.IoloopConfig(logger)

	inputs := ioloop.NewInputs(endpoints.inputNames, endpoints.inputFiles, ioCfg.InitialBufferCapacity)
	outputs := ioloop.NewOutputs(endpoints.outputNames, endpoints.outputFiles, ioCfg.InitialBufferCapacity)

	loop := ioloop.NewLoop(ioCfg, logger, inputs, outputs)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopCtx, cancelLoop := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(loopCtx)

	group.Go(func() error {
		defer cancelLoop()
		return loop.Run(groupCtx)
	})

	group.Go(func() error {
		done := make(chan struct{})
		groutine.Go(groupCtx, "diagnostics-watcher", func(watchCtx context.Context) {
			defer close(done)
			watchDiagnosticSignal(watchCtx, cmd, loop, cfg.Color)
		})
		<-done
		return nil
	})

	return group.Wait()
}
