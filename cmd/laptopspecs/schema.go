package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thywilljoshua/laptop-specs/internal/specs"
)

func schemaCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the embedded laptop spec schema, or check that a schema file compiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check != "" {
				if _, err := specs.LoadSchema(check); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", check)
				return nil
			}
			s, err := specs.DefaultSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(s.Document())
			return err
		},
	}
	cmd.Flags().StringVar(&check, "check", "", "compile this schema file instead of printing the embedded one")
	return cmd
}
