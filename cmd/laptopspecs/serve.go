package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/ai"
	"github.com/thywilljoshua/laptop-specs/internal/catalog"
	"github.com/thywilljoshua/laptop-specs/internal/config"
	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/server"
	"github.com/thywilljoshua/laptop-specs/web"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the laptop assistant chat API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("api")
			cfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.BindAddr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var assistant ai.Assistant = ai.Noop{}
			if cfg.AIProvider == "gemini" {
				g, err := ai.NewGemini(ctx, cfg.GoogleAPIKey, cfg.Model, cfg.MaxOutputTokens)
				if err != nil {
					return err
				}
				assistant = g
			}

			opts := server.Options{
				Assistant:        assistant,
				SpecsPath:        cfg.SpecsPath,
				MarketplacePaths: cfg.MarketplacePaths,
				HistoryLimit:     cfg.HistoryLimit,
				ChatTimeout:      cfg.ChatTimeout,
				Static:           web.Files,
				Logger:           log,
			}
			if cfg.Catalog.Enabled() {
				c, err := catalog.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
				if err != nil {
					return err
				}
				if err := c.Ping(ctx); err != nil {
					log.Warn("catalog unreachable, search disabled", "err", err)
				} else {
					opts.Catalog = c
				}
			}

			return server.New(opts).Run(ctx, cfg.BindAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LAPTOPSPECS_BIND_ADDR)")
	return cmd
}
