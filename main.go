package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	userapp "github.com/km-arc/go-container/app"
	"github.com/km-arc/go-container/framework/app"
)

func main() {
	application, err := app.New() // loads .env automatically
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	if err := application.Register(&userapp.AppServiceProvider{}); err != nil {
		log.Fatal().Err(err).Msg("register failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := application.Logger()
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
