package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/extract"
	"github.com/thywilljoshua/laptop-specs/internal/logger"
	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func extractCmd() *cobra.Command {
	var out string
	var dir string

	cmd := &cobra.Command{
		Use:   "extract [pdf...]",
		Short: "Extract raw specification records from laptop spec sheet PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" && len(args) == 0 {
				return errors.New("pass PDF files or --dir")
			}
			ex := extract.New(logger.New("extract"))

			var (
				records []specs.Record
				errs    []error
			)
			if dir != "" {
				records, errs = ex.ExtractDir(cmd.Context(), dir)
			}
			if len(args) > 0 {
				more, moreErrs := ex.ExtractFiles(cmd.Context(), args)
				records = append(records, more...)
				errs = append(errs, moreErrs...)
			}
			for _, err := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), "extract:", err)
			}
			if records == nil {
				records = []specs.Record{}
			}

			if out == "" {
				b, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			} else if err := specs.WriteJSONFile(out, records); err != nil {
				return err
			}

			if len(records) == 0 && len(errs) > 0 {
				return errors.Join(errs...)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write records to this JSON file instead of stdout")
	cmd.Flags().StringVar(&dir, "dir", "", "extract every *.pdf in this directory")
	return cmd
}
