package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/catalog"
	"github.com/thywilljoshua/laptop-specs/internal/config"
	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/marketplace"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func indexCmd() *cobra.Command {
	var listingsPath string

	cmd := &cobra.Command{
		Use:   "index <normalized.json>",
		Short: "Index normalized records (and optionally scraped listings) into Elasticsearch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New("index")
			cfg, err := config.LoadCatalog()
			if err != nil {
				return err
			}
			c, err := catalog.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.Ping(ctx); err != nil {
				return err
			}

			ds, err := specs.LoadDataset(args[0])
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}
			n, err := c.IndexDataset(ctx, ds)
			if err != nil {
				return err
			}
			summary := map[string]int{"records": n}

			if listingsPath != "" {
				listings, err := loadListings(listingsPath)
				if err != nil {
					return err
				}
				for _, l := range listings {
					if err := c.IndexListing(ctx, l); err != nil {
						return err
					}
				}
				summary["listings"] = len(listings)
			}

			b, _ := json.MarshalIndent(summary, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&listingsPath, "listings", "", "scraped listings JSON file to index as well")
	return cmd
}

// loadListings reads a scrape output file, skipping failure entries.
func loadListings(path string) ([]*marketplace.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	var out []*marketplace.Listing
	for i, entry := range raw {
		if _, failed := entry["error"]; failed {
			continue
		}
		b, _ := json.Marshal(entry)
		var l marketplace.Listing
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, fmt.Errorf("decode %s entry %d: %w", path, i, err)
		}
		if l.SnapshotID == "" {
			continue
		}
		out = append(out, &l)
	}
	return out, nil
}
