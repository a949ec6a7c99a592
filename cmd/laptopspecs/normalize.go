package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func normalizeCmd() *cobra.Command {
	var out string
	var report string
	var schemaPath string
	var strict bool

	cmd := &cobra.Command{
		Use:   "normalize <dataset.json>",
		Short: "Normalize raw records and validate them against the laptop spec schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := specs.Run(cmd.Context(), specs.Config{
				InputPath:  args[0],
				OutputPath: out,
				ReportPath: report,
				SchemaPath: schemaPath,
				Logger:     logger.New("normalize"),
			})
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(res, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			if strict && res.Invalid > 0 {
				return errInvalidRecords
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "laptop_specs_normalized.json", "normalized dataset output file (empty to skip)")
	cmd.Flags().StringVar(&report, "report", "validation_report.txt", "validation report file (empty to skip)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON Schema file to validate against (default: embedded schema)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any record fails validation")
	return cmd
}
