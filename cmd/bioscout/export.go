package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bioscout/internal/config"
	"github.com/kailas-cloud/bioscout/internal/domain/filter"
	"github.com/kailas-cloud/bioscout/internal/repository/export"
	"github.com/kailas-cloud/bioscout/internal/transport/observations"
	"github.com/kailas-cloud/bioscout/internal/usecase/mapsync"
)

func exportCommand() *cobra.Command {
	var (
		env     string
		baseURL string
		filt    string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export observations to a Parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filter.Parse(filt)
			if err != nil {
				return err //nolint:wrapcheck // already names the bad filter
			}

			if baseURL == "" {
				if env == "" {
					env = config.GetEnv()
				}
				cfg, err := config.Load(env)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				baseURL = cfg.Observations.BaseURL
			}

			client, err := observations.New(observations.Config{BaseURL: baseURL, Timeout: time.Minute})
			if err != nil {
				return fmt.Errorf("observations client: %w", err)
			}
			records, err := mapsync.Fetch(cmd.Context(), client, f)
			if err != nil {
				return fmt.Errorf("list observations: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				file, err := os.Create(filepath.Clean(out))
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() { _ = file.Close() }()
				w = file
			}

			n, err := export.WriteParquet(w, records)
			if err != nil {
				return err //nolint:wrapcheck // export errors carry context
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d observations (%s)\n", n, f)
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "Config environment (default: $ENV or local)")
	cmd.Flags().StringVar(&baseURL, "observations-url", "", "Observations backend URL (overrides config)")
	cmd.Flags().StringVar(&filt, "filter", "all", "Filter as kind=value, e.g. species=leopard or type=bird")
	cmd.Flags().StringVarP(&out, "out", "o", "observations.parquet", "Output file, - for stdout")
	return cmd
}
