package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/usecase/resolve"
)

func resolveCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Parse a map command into an observation filter",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := resolve.Resolve(strings.Join(args, " "))
			return printFilter(cmd, f, ok, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the filter as JSON")
	return cmd
}

func extractCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <text>",
		Short: "Extract an observation filter from free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := resolve.Extract(strings.Join(args, " "))
			return printFilter(cmd, f, ok, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the filter as JSON")
	return cmd
}

func printFilter(cmd *cobra.Command, f filter.Descriptor, matched, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		data, err := json.Marshal(struct {
			Matched bool              `json:"matched"`
			Filter  filter.Descriptor `json:"filter"`
		}{matched, f})
		if err != nil {
			return fmt.Errorf("encode filter: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err //nolint:wrapcheck // terminal write
	}
	if !matched {
		_, err := fmt.Fprintln(out, "no match")
		return err //nolint:wrapcheck // terminal write
	}
	_, err := fmt.Fprintln(out, f.String())
	return err //nolint:wrapcheck // terminal write
}
