package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cnodash/internal/server"
	"github.com/KaramelBytes/cnodash/internal/watch"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, loader, err := buildPipeline()
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		watchSources := cfg.Watch
		if cmd.Flags().Changed("watch") {
			watchSources = serveWatch
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if _, err := p.Run(ctx); err != nil {
			logger.Warn("initial pass failed", zap.Error(err))
		}

		if watchSources {
			src := p.Sources()
			w, err := watch.New([]string{src.AreasPath, src.RegistryPath}, func(path string) {
				loader.Invalidate(path)
				p.Invalidate()
				if _, err := p.Run(ctx); err != nil {
					logger.Warn("refresh failed", zap.String("path", path), zap.Error(err))
				}
			}, logger.Named("watch"))
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				w.Stop()
				return err
			}
			defer w.Stop()
		}

		return server.New(p, server.Options{Addr: addr, Debug: debug}, logger.Named("server")).ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload when source files change (overrides config watch)")
}
