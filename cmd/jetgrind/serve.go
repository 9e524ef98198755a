package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jetgrind/internal/bot"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Create context that listens for interrupt signals
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, func(a *app) error {
				if err := a.cfg.RequireBotToken(); err != nil {
					return err
				}
				return serve(ctx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *app) error {
	handler, err := bot.NewHandler(a.cfg.TelegramBotToken, a.store, a.log)
	if err != nil {
		return err
	}

	a.log.Info("Starting jetgrind...")
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.Start(ctx)
	}()
	a.log.Info("jetgrind is running. Press Ctrl+C to exit.")

	<-ctx.Done()
	a.log.Info("Shutting down jetgrind...")
	<-done
	a.log.Info("jetgrind shut down gracefully.")
	return nil
}
