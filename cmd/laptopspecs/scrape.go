package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/config"
	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

type scrapeSummary struct {
	Targets       int    `json:"targets"`
	Succeeded     int    `json:"succeeded"`
	Failed        int    `json:"failed"`
	Output        string `json:"output"`
	ProductOutput string `json:"product_output,omitempty"`
	Published     bool   `json:"published"`
}

func scrapeCmd() *cobra.Command {
	var targetsPath string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape marketplace listings and product pages from a targets file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("scrape")
			cfg, err := config.LoadScrape(targetsPath)
			if err != nil {
				return err
			}
			broker, err := config.LoadBroker()
			if err != nil {
				return err
			}

			s := marketplace.New(cfg, log)
			if broker.Enabled() {
				pub := marketplace.NewKafkaPublisher(broker.KafkaBrokers, broker.KafkaTopic)
				defer closePublisher(log, pub)
				s.Publisher = pub
			}

			targets := cfg.EnabledTargets()
			results := s.Run(cmd.Context(), targets)
			listings, products := marketplace.Split(targets, results)

			sum := scrapeSummary{Targets: len(targets), Output: cfg.Output, Published: broker.Enabled()}
			for _, r := range results {
				if r.Err != nil {
					sum.Failed++
				} else {
					sum.Succeeded++
				}
			}
			if err := specs.WriteJSONFile(cfg.Output, listings); err != nil {
				return err
			}
			if cfg.ProductOutput != "" {
				if err := specs.WriteJSONFile(cfg.ProductOutput, products); err != nil {
					return err
				}
				sum.ProductOutput = cfg.ProductOutput
			}

			b, _ := json.MarshalIndent(sum, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetsPath, "targets", "t", "targets.yaml", "YAML file listing scrape targets")
	return cmd
}

// closePublisher flushes pending snapshots; a failed flush is logged, not fatal.
func closePublisher(log *slog.Logger, pub marketplace.Publisher) {
	if err := pub.Close(); err != nil {
		log.Warn("publisher close failed", "err", err)
	}
}
