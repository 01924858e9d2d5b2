package main

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/report"
	"github.com/2beens/fittrack/internal/stats"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var (
		username string
		format   string
		today    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the statistics (summary, monthly trend, exercise frequency) of one user",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if format != report.FormatJSON && format != report.FormatYAML {
				return fmt.Errorf("unsupported format: %s", format)
			}
			if today != "" {
				if _, err := time.Parse(stats.DateLayout, today); err != nil {
					return fmt.Errorf("invalid --today %q, expected YYYY-MM-DD", today)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			day := time.Now().UTC()
			if today != "" {
				day, _ = time.Parse(stats.DateLayout, today)
			}

			connString, err := opts.connString()
			if err != nil {
				return err
			}
			db, err := report.Open(ctx, connString)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					log.Warnf("close db: %s", closeErr)
				}
			}()

			r, err := report.NewBuilder(report.NewLoader(db)).Build(ctx, username, day)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), r, format)
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "username")
	cmd.Flags().StringVarP(&format, "format", "f", report.FormatJSON, "output format [json | yaml]")
	cmd.Flags().StringVar(&today, "today", "", "compute as of this date (YYYY-MM-DD), defaults to the current UTC date")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
