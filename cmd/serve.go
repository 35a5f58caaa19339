package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/api"
	"github.com/harborview-living/directory-cli/internal/directory"
	"github.com/harborview-living/directory-cli/internal/matcher"
	"github.com/harborview-living/directory-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the directory and assessment API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate")
		}

		if err := bootstrapDirectory(ctx, st); err != nil {
			return err
		}

		gaz, closeGaz, err := initGazetteer()
		if err != nil {
			return err
		}
		defer closeGaz()

		bank, err := initBank()
		if err != nil {
			return err
		}

		server := api.NewServer(st, matcher.New(gaz), bank, api.Options{
			RadiusMiles:    cfg.Matcher.RadiusMiles,
			MaxResults:     cfg.Matcher.MaxResults,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.Router(),
		}

		// Graceful shutdown. ctx is already cancelled here, so draining
		// in-flight requests needs its own deadline.
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// bootstrapDirectory seeds an empty store from the provider chain so the
// site renders before the first import: the configured JSON export when
// present, else the compiled-in launch roster.
func bootstrapDirectory(ctx context.Context, st store.Store) error {
	existing, err := st.ListCommunities(ctx)
	if err != nil {
		return eris.Wrap(err, "serve: list communities")
	}
	if len(existing) > 0 {
		return nil
	}

	chain := directory.NewChain(
		directory.NewFileProvider(cfg.Directory.FilePath),
		directory.NewSeedProvider(),
	)
	communities, err := chain.Load(ctx)
	if err != nil {
		return eris.Wrap(err, "serve: load directory")
	}

	count, err := st.UpsertCommunities(ctx, communities)
	if err != nil {
		return eris.Wrap(err, "serve: seed communities")
	}
	zap.L().Info("seeded empty store from directory chain", zap.Int64("communities", count))
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
