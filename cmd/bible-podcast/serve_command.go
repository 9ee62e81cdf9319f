package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/library"
	"bible-reading-plan/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Preview built episodes and the feed over local HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger

			listenAddr := config.ListenAddr()
			if err := config.ValidateListenAddr(listenAddr); err != nil {
				return fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
			}

			buildDir, err := config.ResolveBuildDir()
			if err != nil {
				return err
			}
			loc, err := config.Location()
			if err != nil {
				return err
			}
			first, err := config.FirstMonday(loc)
			if err != nil {
				return err
			}
			feedConfig, err := config.ResolveFeedMetadata()
			if err != nil {
				return err
			}
			asm, _, err := ctx.assembler(buildDir)
			if err != nil {
				return err
			}

			lib, err := library.NewLibrary(asm.AudioDir(), asm.Store(), config.RefreshDebounce(), logger)
			if err != nil {
				return fmt.Errorf("initialise library: %w", err)
			}
			defer func() {
				if err := lib.Close(); err != nil {
					logger.Printf("error closing library: %v", err)
				}
			}()

			handler := server.New(lib, asm.AudioDir(), server.FeedMetadata{
				Title:       feedConfig.Title,
				Description: feedConfig.Description,
				Language:    feedConfig.Language,
				Author:      feedConfig.Author,
				FirstMonday: first,
			}, logger)
			httpServer := &http.Server{
				Addr:              listenAddr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				<-runCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Printf("graceful shutdown error: %v", err)
				}
			}()

			logger.Printf("listening on %s (audio directory: %s)", listenAddr, asm.AudioDir())
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server error: %w", err)
			}
			logger.Println("shutdown complete")
			return nil
		},
	}
}
