package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agustogpt/chatstore/pkg/chatserver"
	"github.com/agustogpt/chatstore/pkg/flags"
)

type ServerFlags struct {
	APIFlags     *flags.APIFlags
	StorageFlags *flags.StorageFlags
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		APIFlags:     flags.NewAPIFlags(),
		StorageFlags: flags.NewStorageFlags(),
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.APIFlags.BindFlags(flagSet)
	f.StorageFlags.BindFlags(flagSet)
}

func (f *ServerFlags) Validate() error {
	return f.StorageFlags.Validate()
}

type drainingServer interface {
	Serve() error
	Shutdown(ctx context.Context) error
}

// runServer serves until ctx is done, then waits for in-flight requests to drain before
// returning.
func runServer(ctx context.Context, server drainingServer, drainTimeout time.Duration) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("error shutting down server")
		}
	}()

	if err := server.Serve(); err != nil {
		return err
	}
	<-drained
	return nil
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat history API server",
		Long: `Run the chat history API server. When storage is not configured or cannot be
reached at startup the server still runs, with persistence disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.Validate(); err != nil {
				return errors.WithMessage(err, "error validating options")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			manager := f.StorageFlags.GetManager(ctx)
			server := chatserver.NewServer(f.APIFlags.ListenAddr, manager, prometheus.DefaultRegisterer)

			if f.APIFlags.MetricsAddr != "" {
				// Serve our metrics endpoint for prometheus to scrape
				go func() {
					metricsMux := http.NewServeMux()
					metricsMux.Handle("/metrics", promhttp.Handler())
					err := http.ListenAndServe(f.APIFlags.MetricsAddr, metricsMux) //nolint
					if err != nil {
						log.WithError(err).Error("metrics server exited")
					}
				}()
			}

			return runServer(ctx, server, 10*time.Second)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
